// Package board implements the personal board pipeline: a user's question is
// sent to each of their board members, every member's answer is generated by
// a language model, and the answers are stored together as one batch.
//
// A submission either stores an answer for every member or stores nothing.
package board

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/hrygo/personalboard/plugin/ai"
	"github.com/hrygo/personalboard/plugin/ai/timeout"
	boarderrors "github.com/hrygo/personalboard/server/internal/errors"
	"github.com/hrygo/personalboard/internal/observability"
	"github.com/hrygo/personalboard/store"
)

// Operation names used in logs.
const (
	OperationSubmitAll    = "submit_all"
	OperationSubmitMember = "submit_member"
)

const defaultFanOutConcurrency = 4

// Config tunes the generation pipeline.
type Config struct {
	// GenerationTimeout bounds each member's answer.
	GenerationTimeout time.Duration
	// FanOutConcurrency bounds the model calls in flight for one submission.
	FanOutConcurrency int
	// SubmissionTimeout bounds a whole submission. It is raised to at least
	// three generation timeouts.
	SubmissionTimeout time.Duration
}

type service struct {
	store             Store
	generator         *Generator
	metrics           *observability.Metrics
	logger            *slog.Logger
	concurrency       int
	submissionTimeout time.Duration
}

// NewService creates a new board service.
func NewService(st Store, llm ai.LLMService, metrics *observability.Metrics, logger *slog.Logger, cfg Config) Service {
	if metrics == nil {
		metrics = observability.NewMetrics(0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.GenerationTimeout <= 0 {
		cfg.GenerationTimeout = timeout.GenerationTimeout
	}
	if cfg.FanOutConcurrency <= 0 {
		cfg.FanOutConcurrency = defaultFanOutConcurrency
	}
	if cfg.SubmissionTimeout <= 0 {
		cfg.SubmissionTimeout = timeout.SubmissionTimeout
	}
	if minimum := 3 * cfg.GenerationTimeout; cfg.SubmissionTimeout < minimum {
		cfg.SubmissionTimeout = minimum
	}

	return &service{
		store:             st,
		generator:         NewGenerator(llm, cfg.GenerationTimeout, metrics),
		metrics:           metrics,
		logger:            logger,
		concurrency:       cfg.FanOutConcurrency,
		submissionTimeout: cfg.SubmissionTimeout,
	}
}

func (s *service) CreateForAllMembers(ctx context.Context, userID, userInput string) (*Submission, error) {
	reqCtx := observability.RequestContextFrom(ctx, s.logger, OperationSubmitAll, userID)
	ctx, cancel := context.WithTimeout(ctx, s.submissionTimeout)
	defer cancel()

	submission, err := s.createForAllMembers(ctx, reqCtx, userID, userInput)
	s.finish(reqCtx, submission, err)
	return submission, err
}

func (s *service) createForAllMembers(ctx context.Context, reqCtx *observability.RequestContext, userID, userInput string) (*Submission, error) {
	if err := validateSubmission(userID, userInput); err != nil {
		return nil, err
	}

	members, err := s.store.ListMembers(ctx, &store.FindMember{UserID: &userID})
	if err != nil {
		return nil, boarderrors.PersonaLookupFailed("failed to load board members", err)
	}
	if len(members) == 0 {
		return nil, boarderrors.PersonaLookupFailed("user has no board members", nil).WithContext("user_id", userID)
	}
	reqCtx.Debug("generating answers", slog.Int(observability.LogFieldMemberSize, len(members)))

	outputs, err := s.generateAll(ctx, members, userInput)
	if err != nil {
		return nil, err
	}
	return s.persist(ctx, userID, userInput, members, outputs)
}

// generateAll runs one generation per member. Each output lands in the slot
// of its member, so completion order never affects member_id tagging. The
// first failure cancels the remaining calls.
func (s *service) generateAll(ctx context.Context, members []*store.Member, userInput string) ([]string, error) {
	outputs := make([]string, len(members))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, member := range members {
		g.Go(func() error {
			output, err := s.generator.Generate(gctx, member, userInput)
			if err != nil {
				return err
			}
			outputs[i] = output
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

func (s *service) CreateForMember(ctx context.Context, memberID, userID, userInput string) (*Submission, error) {
	reqCtx := observability.RequestContextFrom(ctx, s.logger, OperationSubmitMember, userID)
	ctx, cancel := context.WithTimeout(ctx, s.submissionTimeout)
	defer cancel()

	submission, err := s.createForMember(ctx, memberID, userID, userInput)
	s.finish(reqCtx, submission, err, slog.String(observability.LogFieldMemberID, memberID))
	return submission, err
}

func (s *service) createForMember(ctx context.Context, memberID, userID, userInput string) (*Submission, error) {
	if strings.TrimSpace(memberID) == "" {
		return nil, boarderrors.ValidationFailed("member id is required")
	}
	if err := validateSubmission(userID, userInput); err != nil {
		return nil, err
	}

	member, err := s.store.GetMember(ctx, &store.FindMember{ID: &memberID})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, boarderrors.NotFound("board member not found").WithContext("member_id", memberID)
		}
		return nil, boarderrors.PersonaLookupFailed("failed to load board member", err)
	}
	if member.UserID != userID {
		return nil, boarderrors.PermissionDenied("board member belongs to another user").WithContext("member_id", memberID)
	}

	output, err := s.generator.Generate(ctx, member, userInput)
	if err != nil {
		return nil, err
	}
	return s.persist(ctx, userID, userInput, []*store.Member{member}, []string{output})
}

// persist writes one history row per member in a single transaction.
func (s *service) persist(ctx context.Context, userID, userInput string, members []*store.Member, outputs []string) (*Submission, error) {
	batchUID := shortuuid.New()
	creates := make([]*store.History, len(members))
	for i, member := range members {
		creates[i] = &store.History{
			UID:          shortuuid.New(),
			BatchUID:     batchUID,
			UserID:       userID,
			MemberID:     member.ID,
			UserInput:    userInput,
			MemberOutput: outputs[i],
		}
	}

	if _, err := s.store.CreateHistories(ctx, creates); err != nil {
		return nil, boarderrors.PersistenceFailed("failed to save answers", err)
	}
	return &Submission{BatchUID: batchUID, Count: len(creates)}, nil
}

func (s *service) ListHistory(ctx context.Context, memberID, userID string) ([]*store.History, error) {
	if strings.TrimSpace(memberID) == "" || strings.TrimSpace(userID) == "" {
		return nil, boarderrors.ValidationFailed("member id and user id are required")
	}

	list, err := s.store.ListHistories(ctx, &store.FindHistory{
		MemberID: &memberID,
		UserID:   &userID,
	})
	if err != nil {
		return nil, boarderrors.Wrap(err, boarderrors.ErrCodeInternal, "failed to list history")
	}
	if list == nil {
		list = []*store.History{}
	}
	return list, nil
}

func (s *service) finish(reqCtx *observability.RequestContext, submission *Submission, err error, attrs ...slog.Attr) {
	duration := reqCtx.Duration()
	attrs = append(attrs, slog.Int64(observability.LogFieldDuration, duration.Milliseconds()))

	if err != nil {
		code := boarderrors.GetCodeFromError(err, boarderrors.ErrCodeInternal)
		s.metrics.RecordSubmission(string(code), 0, duration)
		reqCtx.Error("submission failed", err, append(attrs, slog.String(observability.LogFieldErrorCode, string(code)))...)
		return
	}

	s.metrics.RecordSubmission("", submission.Count, duration)
	reqCtx.Info("submission stored", append(attrs,
		slog.String(observability.LogFieldBatchUID, submission.BatchUID),
		slog.Int(observability.LogFieldMemberSize, submission.Count))...)
}

func validateSubmission(userID, userInput string) error {
	if strings.TrimSpace(userID) == "" {
		return boarderrors.ValidationFailed("user_id is required")
	}
	if strings.TrimSpace(userInput) == "" {
		return boarderrors.ValidationFailed("user_input is required")
	}
	return nil
}
