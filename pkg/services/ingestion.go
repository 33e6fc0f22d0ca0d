package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zenitsu0509/Employee-NLQ/pkg/apperrors"
	"github.com/zenitsu0509/Employee-NLQ/pkg/llm"
	"github.com/zenitsu0509/Employee-NLQ/pkg/models"
	"github.com/zenitsu0509/Employee-NLQ/pkg/retry"
	"github.com/zenitsu0509/Employee-NLQ/pkg/vectorstore"
)

// IngestionConfig tunes the ingestion service.
type IngestionConfig struct {
	Workers        int
	EmbedModel     string
	EmbedBatchSize int
	EmbedRetries   int
	EmbedTimeout   time.Duration
}

// IngestionService turns uploaded files into embedded chunks in the
// vector store, tracking progress through the job tracker.
type IngestionService struct {
	reader  *DocumentReader
	chunker *Chunker
	client  llm.LLMClient
	store   vectorstore.Store
	tracker *JobTracker
	cfg     IngestionConfig
	logger  *zap.Logger
}

// NewIngestionService wires the ingestion pipeline.
func NewIngestionService(reader *DocumentReader, chunker *Chunker, client llm.LLMClient,
	store vectorstore.Store, tracker *JobTracker, cfg IngestionConfig, logger *zap.Logger) *IngestionService {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.EmbedBatchSize <= 0 {
		cfg.EmbedBatchSize = 32
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngestionService{
		reader:  reader,
		chunker: chunker,
		client:  client,
		store:   store,
		tracker: tracker,
		cfg:     cfg,
		logger:  logger.Named("ingestion"),
	}
}

// Ingest validates the batch, registers a job and processes the files in
// background workers. The returned job is a snapshot at creation time.
// Unsupported extensions are rejected at validation and never enter the
// job; the rejection is recorded in job metadata. A batch with no
// supported file fails validation up front with no job.
func (s *IngestionService) Ingest(ctx context.Context, files []FileInput) (models.IngestionJob, error) {
	if len(files) == 0 {
		return models.IngestionJob{}, fmt.Errorf("%w: no files in batch", apperrors.ErrUnsupportedFileType)
	}

	var accepted []FileInput
	rejected := map[string]string{}
	for _, file := range files {
		if s.reader.Supported(file.Name) {
			accepted = append(accepted, file)
		} else {
			rejected["file:"+file.Name] = "rejected: unsupported file type"
		}
	}
	if len(accepted) == 0 {
		return models.IngestionJob{}, fmt.Errorf("%w: no supported files in batch", apperrors.ErrUnsupportedFileType)
	}

	job := s.tracker.Create(len(accepted), rejected)
	snapshot, err := s.tracker.Get(job.ID)
	if err != nil {
		return models.IngestionJob{}, err
	}

	go s.process(context.WithoutCancel(ctx), job.ID, accepted)

	return snapshot, nil
}

func (s *IngestionService) process(ctx context.Context, jobID string, files []FileInput) {
	if err := s.tracker.Transition(jobID, models.JobStatusInProgress, "processing"); err != nil {
		s.logger.Error("job transition failed", zap.String("job_id", jobID), zap.Error(err))
		return
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)

	indexed := 0
	done := make(chan bool, len(files))

	for _, file := range files {
		g.Go(func() error {
			ok := s.processFile(ctx, jobID, file)
			done <- ok
			if err := s.tracker.IncrementProcessed(jobID, "Processed "+file.Name); err != nil {
				s.logger.Error("progress update failed", zap.String("job_id", jobID), zap.Error(err))
			}
			return nil
		})
	}

	// Workers never return errors; failures are per-file annotations.
	_ = g.Wait()
	close(done)
	for ok := range done {
		if ok {
			indexed++
		}
	}

	message := fmt.Sprintf("Indexed %d of %d file(s)", indexed, len(files))
	if err := s.tracker.Transition(jobID, models.JobStatusCompleted, message); err != nil {
		s.logger.Error("job completion failed", zap.String("job_id", jobID), zap.Error(err))
	}
	s.logger.Info("ingestion finished",
		zap.String("job_id", jobID),
		zap.Int("indexed", indexed),
		zap.Int("total", len(files)))
}

// processFile returns true when the file contributed chunks to the index.
func (s *IngestionService) processFile(ctx context.Context, jobID string, file FileInput) bool {
	text, err := s.reader.Read(file)
	if err != nil {
		s.tracker.AnnotateFile(jobID, file.Name, "failed: "+err.Error())
		s.logger.Warn("extraction failed", zap.String("file", file.Name), zap.Error(err))
		return false
	}

	contents := s.chunker.Chunk(text, file.Name)
	if len(contents) == 0 {
		s.tracker.AnnotateFile(jobID, file.Name, "skipped: no extractable text")
		return false
	}

	chunks := make([]models.DocumentChunk, len(contents))
	docID := file.Name
	now := time.Now().UTC()
	for i, content := range contents {
		// The full filename keeps IDs distinct when documents share a
		// stem, such as notes.txt and notes.md.
		chunks[i] = models.DocumentChunk{
			ID:         fmt.Sprintf("%s-%d", file.Name, i),
			DocumentID: docID,
			JobID:      jobID,
			Ordinal:    i,
			Content:    content,
			Metadata:   map[string]string{"filename": file.Name},
			CreatedAt:  now,
		}
	}

	if !s.embedChunks(ctx, jobID, file.Name, chunks) {
		return false
	}

	if err := s.store.Upsert(ctx, chunks); err != nil {
		s.tracker.AnnotateFile(jobID, file.Name, "failed: "+err.Error())
		s.logger.Error("vector upsert failed", zap.String("file", file.Name), zap.Error(err))
		return false
	}

	return true
}

// embedChunks fills in embeddings batch by batch, retrying transient
// failures. A batch that exhausts retries fails the whole file; partial
// documents in the index would return misleading search results.
func (s *IngestionService) embedChunks(ctx context.Context, jobID, filename string, chunks []models.DocumentChunk) bool {
	retryCfg := retry.DefaultConfig()
	if s.cfg.EmbedRetries > 0 {
		retryCfg.MaxRetries = s.cfg.EmbedRetries
	}

	for start := 0; start < len(chunks); start += s.cfg.EmbedBatchSize {
		end := start + s.cfg.EmbedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		inputs := make([]string, len(batch))
		for i, chunk := range batch {
			inputs[i] = chunk.Content
		}

		var embeddings [][]float32
		err := retry.DoIfRetryable(ctx, retryCfg, func() error {
			embedCtx := ctx
			if s.cfg.EmbedTimeout > 0 {
				var cancel context.CancelFunc
				embedCtx, cancel = context.WithTimeout(ctx, s.cfg.EmbedTimeout)
				defer cancel()
			}
			var embedErr error
			embeddings, embedErr = s.client.CreateEmbeddings(embedCtx, inputs, s.cfg.EmbedModel)
			return embedErr
		})
		if err != nil {
			s.tracker.AnnotateFile(jobID, filename, "failed: embedding error: "+err.Error())
			s.logger.Error("embedding failed",
				zap.String("file", filename),
				zap.Int("batch_start", start),
				zap.Error(err))
			return false
		}
		if len(embeddings) != len(batch) {
			s.tracker.AnnotateFile(jobID, filename, "failed: embedding count mismatch")
			return false
		}

		for i := range batch {
			batch[i].Embedding = embeddings[i]
		}
	}

	return true
}
