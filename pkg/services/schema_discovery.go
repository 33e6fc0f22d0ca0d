package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jinzhu/inflection"
	"go.uber.org/zap"

	"github.com/zenitsu0509/Employee-NLQ/pkg/datasource"
	"github.com/zenitsu0509/Employee-NLQ/pkg/models"
)

// SchemaDiscoveryService builds a SchemaModel from a live database.
// Introspection failures on individual tables degrade to warnings; only
// an unreachable database aborts discovery.
type SchemaDiscoveryService struct {
	aliases       AliasDictionary
	sampleRows    int
	sampleTimeout time.Duration
	logger        *zap.Logger
}

// NewSchemaDiscoveryService creates a discovery service.
func NewSchemaDiscoveryService(aliases AliasDictionary, sampleRows int, sampleTimeout time.Duration, logger *zap.Logger) *SchemaDiscoveryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchemaDiscoveryService{
		aliases:       aliases,
		sampleRows:    sampleRows,
		sampleTimeout: sampleTimeout,
		logger:        logger.Named("discovery"),
	}
}

// Discover introspects the database behind the adapter and assembles the
// schema model used for classification and SQL generation.
func (s *SchemaDiscoveryService) Discover(ctx context.Context, adapter datasource.Adapter) (*models.SchemaModel, error) {
	if err := adapter.TestConnection(ctx); err != nil {
		return nil, err
	}

	tableMeta, err := adapter.DiscoverTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("discover tables: %w", err)
	}

	model := &models.SchemaModel{Synonyms: map[string][]string{}}
	var vocab []tableVocabulary

	for _, tm := range tableMeta {
		table := models.Table{Name: tableName(tm)}

		columns, err := adapter.DiscoverColumns(ctx, tm.SchemaName, tm.TableName)
		if err != nil {
			model.Warnings = append(model.Warnings,
				fmt.Sprintf("columns unavailable for table %s: %v", table.Name, err))
			s.logger.Warn("column discovery failed",
				zap.String("table", table.Name), zap.Error(err))
			continue
		}
		for _, cm := range columns {
			table.Columns = append(table.Columns, models.Column{
				Name:         cm.ColumnName,
				DeclaredType: cm.DataType,
				Type:         models.NormalizeColumnType(cm.DataType),
			})
		}

		if s.sampleRows > 0 {
			sampleCtx, cancel := context.WithTimeout(ctx, s.sampleTimeout)
			rows, err := adapter.SampleRows(sampleCtx, tm.SchemaName, tm.TableName, s.sampleRows)
			cancel()
			if err != nil {
				model.Warnings = append(model.Warnings,
					fmt.Sprintf("sample rows unavailable for table %s: %v", table.Name, err))
				s.logger.Warn("row sampling failed",
					zap.String("table", table.Name), zap.Error(err))
			} else {
				table.SampleRows = rows
			}
		}

		model.Tables = append(model.Tables, table)
		colNames := make([]string, len(table.Columns))
		for i, c := range table.Columns {
			colNames[i] = c.Name
		}
		vocab = append(vocab, tableVocabulary{name: table.Name, columns: colNames})
	}

	fks, err := adapter.DiscoverForeignKeys(ctx)
	if err != nil {
		model.Warnings = append(model.Warnings,
			fmt.Sprintf("foreign keys unavailable: %v", err))
		s.logger.Warn("foreign key discovery failed", zap.Error(err))
	}
	for _, fk := range fks {
		model.Relationships = append(model.Relationships, models.Relationship{
			FromTable:  tableName(datasource.TableMetadata{SchemaName: fk.SourceSchema, TableName: fk.SourceTable}),
			FromColumn: fk.SourceColumn,
			ToTable:    tableName(datasource.TableMetadata{SchemaName: fk.TargetSchema, TableName: fk.TargetTable}),
			ToColumn:   fk.TargetColumn,
			Confidence: models.ConfidenceConstraint,
		})
	}

	model.Relationships = append(model.Relationships, inferRelationships(model)...)
	model.Synonyms = s.aliases.BuildSynonyms(vocab)

	s.logger.Info("schema discovered",
		zap.Int("tables", len(model.Tables)),
		zap.Int("relationships", len(model.Relationships)),
		zap.Int("warnings", len(model.Warnings)))

	return model, nil
}

// tableName renders a table reference, qualifying only non-public schemas.
func tableName(tm datasource.TableMetadata) string {
	if tm.SchemaName == "" || tm.SchemaName == "public" {
		return tm.TableName
	}
	return tm.SchemaName + "." + tm.TableName
}

// inferRelationships finds `<x>_id` columns naming another table, for
// databases without declared constraints. Pairs already covered by a
// constraint are skipped.
func inferRelationships(model *models.SchemaModel) []models.Relationship {
	declared := map[string]struct{}{}
	for _, rel := range model.Relationships {
		declared[rel.FromTable+"."+rel.FromColumn] = struct{}{}
	}

	var inferred []models.Relationship
	for _, table := range model.Tables {
		for _, column := range table.Columns {
			base, found := strings.CutSuffix(strings.ToLower(column.Name), "_id")
			if !found || base == "" {
				continue
			}
			if _, ok := declared[table.Name+"."+column.Name]; ok {
				continue
			}

			target := model.FindTable(inflection.Plural(base))
			if target == nil {
				target = model.FindTable(base)
			}
			if target == nil || target.Name == table.Name {
				continue
			}

			// Only infer when the target exposes an obvious key column.
			toColumn := "id"
			if target.FindColumn(toColumn) == nil {
				toColumn = base + "_id"
				if target.FindColumn(toColumn) == nil {
					continue
				}
			}

			inferred = append(inferred, models.Relationship{
				FromTable:  table.Name,
				FromColumn: column.Name,
				ToTable:    target.Name,
				ToColumn:   toColumn,
				Confidence: models.ConfidenceHeuristic,
			})
		}
	}
	return inferred
}
