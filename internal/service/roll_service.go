package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/sloanb/pjourney/internal/domain"
	"github.com/sloanb/pjourney/internal/store"
)

// rollRepository is the subset of store.RollStore that RollService requires.
type rollRepository interface {
	CreateTx(ctx context.Context, tx *sql.Tx, r *domain.Roll) error
	GetByID(ctx context.Context, userID, id int64) (*domain.Roll, error)
	GetByIDTx(ctx context.Context, tx *sql.Tx, userID, id int64) (*domain.Roll, error)
	UpdateLifecycleTx(ctx context.Context, tx *sql.Tx, r *domain.Roll) error
	UpdateDetails(ctx context.Context, r *domain.Roll) (*domain.Roll, error)
	List(ctx context.Context, userID int64, status *domain.RollStatus) ([]*domain.Roll, error)
	Delete(ctx context.Context, userID, id int64) error
}

// stockRepository is the subset of store.FilmStockStore that RollService requires.
type stockRepository interface {
	GetByID(ctx context.Context, userID, id int64) (*domain.FilmStock, error)
	GetByIDTx(ctx context.Context, tx *sql.Tx, userID, id int64) (*domain.FilmStock, error)
	DecrementQuantityTx(ctx context.Context, tx *sql.Tx, userID, id int64) error
}

// cameraRepository is the subset of store.CameraStore that RollService requires.
type cameraRepository interface {
	GetByID(ctx context.Context, userID, id int64) (*domain.Camera, error)
}

// lensRepository is the subset of store.LensStore that RollService requires.
type lensRepository interface {
	GetByID(ctx context.Context, userID, id int64) (*domain.Lens, error)
}

// frameRepository is the subset of store.FrameStore that RollService requires.
type frameRepository interface {
	BulkCreateTx(ctx context.Context, tx *sql.Tx, rollID int64, count int, lensID *int64) error
}

// developmentRepository is the subset of store.DevelopmentStore that RollService requires.
type developmentRepository interface {
	CreateTx(ctx context.Context, tx *sql.Tx, d *domain.RollDevelopment, steps []domain.DevelopmentStep) error
}

// recipeRepository is the subset of store.RecipeStore that RollService requires.
type recipeRepository interface {
	GetByID(ctx context.Context, userID, id int64) (*domain.DevRecipe, error)
	ListSteps(ctx context.Context, recipeID int64) ([]*domain.DevRecipeStep, error)
}

// RollService is the roll lifecycle engine. It is the only component that
// performs multi-table transactional writes: creating a roll consumes film
// stock, loading one materializes its frames, and advancing one out of the
// finished state records its development.
type RollService struct {
	db           *sql.DB
	rolls        rollRepository
	stocks       stockRepository
	cameras      cameraRepository
	lenses       lensRepository
	frames       frameRepository
	developments developmentRepository
	recipes      recipeRepository
	logger       *slog.Logger
}

func NewRollService(
	db *sql.DB,
	rolls rollRepository,
	stocks stockRepository,
	cameras cameraRepository,
	lenses lensRepository,
	frames frameRepository,
	developments developmentRepository,
	recipes recipeRepository,
	logger *slog.Logger,
) *RollService {
	return &RollService{
		db:           db,
		rolls:        rolls,
		stocks:       stocks,
		cameras:      cameras,
		lenses:       lenses,
		frames:       frames,
		developments: developments,
		recipes:      recipes,
		logger:       logger,
	}
}

// CreateRollInput carries the caller-settable fields of a fresh roll.
type CreateRollInput struct {
	FilmStockID   int64
	Notes         string
	Title         string
	PushPullStops float64
	Location      string
}

// CreateRoll inserts a fresh roll and decrements the film stock's quantity
// on hand, atomically. A stock with zero quantity rejects the operation and
// leaves both tables untouched.
func (s *RollService) CreateRoll(ctx context.Context, userID int64, in CreateRollInput) (*domain.Roll, error) {
	roll := &domain.Roll{
		UserID:        userID,
		FilmStockID:   in.FilmStockID,
		Notes:         in.Notes,
		Title:         in.Title,
		PushPullStops: in.PushPullStops,
		Location:      in.Location,
	}

	err := store.InTx(ctx, s.db, func(tx *sql.Tx) error {
		stock, err := s.stocks.GetByIDTx(ctx, tx, userID, in.FilmStockID)
		if err != nil {
			return err
		}
		if stock == nil {
			return fmt.Errorf("film stock %d: %w", in.FilmStockID, store.ErrNotFound)
		}
		if err := s.stocks.DecrementQuantityTx(ctx, tx, userID, in.FilmStockID); err != nil {
			return err
		}
		return s.rolls.CreateTx(ctx, tx, roll)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("roll created", "roll_id", roll.ID, "film_stock_id", in.FilmStockID, "user_id", userID)
	return s.rolls.GetByID(ctx, userID, roll.ID)
}

// Load moves a fresh roll into a camera. In the same transaction it stamps
// loaded_at and bulk-inserts one frame row per exposure, numbered 1..N from
// the stock's frames-per-roll, each defaulted to the roll's default lens. A
// stock with zero frames per roll (digital) gets no frames.
func (s *RollService) Load(ctx context.Context, userID, rollID, cameraID int64, defaultLensID *int64) (*domain.Roll, error) {
	roll, err := s.rolls.GetByID(ctx, userID, rollID)
	if err != nil {
		return nil, err
	}
	if roll == nil {
		return nil, fmt.Errorf("roll %d: %w", rollID, store.ErrNotFound)
	}
	if roll.Status != domain.StatusFresh {
		return nil, fmt.Errorf("cannot load roll in status %q: %w", roll.Status, ErrInvalidTransition)
	}

	camera, err := s.cameras.GetByID(ctx, userID, cameraID)
	if err != nil {
		return nil, err
	}
	if camera == nil {
		return nil, fmt.Errorf("camera %d: %w", cameraID, store.ErrNotFound)
	}

	if defaultLensID != nil {
		lens, err := s.lenses.GetByID(ctx, userID, *defaultLensID)
		if err != nil {
			return nil, err
		}
		if lens == nil {
			return nil, fmt.Errorf("lens %d: %w", *defaultLensID, store.ErrNotFound)
		}
	}

	stock, err := s.stocks.GetByID(ctx, userID, roll.FilmStockID)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		return nil, fmt.Errorf("film stock %d: %w", roll.FilmStockID, store.ErrNotFound)
	}

	now := time.Now().UTC()
	err = store.InTx(ctx, s.db, func(tx *sql.Tx) error {
		roll.CameraID = &cameraID
		roll.DefaultLensID = defaultLensID
		roll.Status = domain.StatusLoaded
		roll.LoadedAt = &now
		if err := s.rolls.UpdateLifecycleTx(ctx, tx, roll); err != nil {
			return err
		}
		return s.frames.BulkCreateTx(ctx, tx, roll.ID, stock.FramesPerRoll, defaultLensID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("roll loaded", "roll_id", roll.ID, "camera_id", cameraID, "frames", stock.FramesPerRoll)
	return s.rolls.GetByID(ctx, userID, rollID)
}

// AdvanceOptions carries the development branch decision required when
// advancing out of the finished state. All other transitions ignore it.
type AdvanceOptions struct {
	Branch domain.DevBranch

	// Lab branch.
	LabName    string
	LabContact string
	CostAmount *float64

	// Self branch. Steps are realized values; when empty and RecipeID is
	// set, the recipe's steps are snapshotted instead.
	ProcessType string
	RecipeID    *int64
	Steps       []domain.DevelopmentStep

	Notes string
}

// Advance moves a roll one step forward through its lifecycle:
//
//	loaded -> shooting
//	shooting -> finished        (finished_at)
//	finished -> developing      (lab branch: sent_at, development record)
//	finished -> developed       (self branch: sent_at = developed_at, steps)
//	developing -> developed     (developed_at)
//
// Fresh rolls advance via Load, developed rolls are terminal. Every arm is a
// single atomic write; a precondition failure leaves all rows unchanged.
func (s *RollService) Advance(ctx context.Context, userID, rollID int64, opts *AdvanceOptions) (*domain.Roll, error) {
	roll, err := s.rolls.GetByID(ctx, userID, rollID)
	if err != nil {
		return nil, err
	}
	if roll == nil {
		return nil, fmt.Errorf("roll %d: %w", rollID, store.ErrNotFound)
	}

	now := time.Now().UTC()

	switch roll.Status {
	case domain.StatusLoaded:
		roll.Status = domain.StatusShooting
		err = s.updateLifecycle(ctx, roll)

	case domain.StatusShooting:
		roll.Status = domain.StatusFinished
		roll.FinishedAt = &now
		err = s.updateLifecycle(ctx, roll)

	case domain.StatusFinished:
		if opts == nil {
			return nil, fmt.Errorf("development branch required: %w", ErrInvalidBranch)
		}
		err = s.advanceFinished(ctx, roll, opts, now)

	case domain.StatusDeveloping:
		roll.Status = domain.StatusDeveloped
		roll.DevelopedAt = &now
		err = s.updateLifecycle(ctx, roll)

	case domain.StatusFresh:
		return nil, fmt.Errorf("fresh roll must be loaded into a camera first: %w", ErrInvalidTransition)

	case domain.StatusDeveloped:
		return nil, fmt.Errorf("roll is already developed: %w", ErrInvalidTransition)

	default:
		return nil, fmt.Errorf("unknown roll status %q: %w", roll.Status, ErrInvalidTransition)
	}

	if err != nil {
		return nil, err
	}

	s.logger.Info("roll advanced", "roll_id", roll.ID, "status", roll.Status)
	return s.rolls.GetByID(ctx, userID, rollID)
}

func (s *RollService) updateLifecycle(ctx context.Context, roll *domain.Roll) error {
	return store.InTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.rolls.UpdateLifecycleTx(ctx, tx, roll)
	})
}

// advanceFinished takes the branch decision out of the finished state. The
// lab branch parks the roll in developing until a later Advance; the self
// branch has no external turnaround, so sent_at and developed_at are stamped
// with the same instant and the developing state is never observable.
func (s *RollService) advanceFinished(ctx context.Context, roll *domain.Roll, opts *AdvanceOptions, now time.Time) error {
	dev := &domain.RollDevelopment{
		RollID:  roll.ID,
		DevType: opts.Branch,
		Notes:   opts.Notes,
	}
	var steps []domain.DevelopmentStep

	switch opts.Branch {
	case domain.DevBranchLab:
		if opts.LabName == "" {
			return fmt.Errorf("lab name required: %w", ErrValidation)
		}
		labName := opts.LabName
		dev.LabName = &labName
		if opts.LabContact != "" {
			contact := opts.LabContact
			dev.LabContact = &contact
		}
		dev.CostAmount = opts.CostAmount

		roll.Status = domain.StatusDeveloping
		roll.SentAt = &now

	case domain.DevBranchSelf:
		if opts.ProcessType == "" {
			return fmt.Errorf("process type required: %w", ErrValidation)
		}
		processType := opts.ProcessType
		dev.ProcessType = &processType
		dev.RecipeID = opts.RecipeID

		steps = opts.Steps
		if len(steps) == 0 && opts.RecipeID != nil {
			snapshot, err := s.snapshotRecipeSteps(ctx, roll.UserID, *opts.RecipeID)
			if err != nil {
				return err
			}
			steps = snapshot
		}

		roll.Status = domain.StatusDeveloped
		roll.SentAt = &now
		roll.DevelopedAt = &now

	default:
		return fmt.Errorf("branch %q: %w", opts.Branch, ErrInvalidBranch)
	}

	return store.InTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.rolls.UpdateLifecycleTx(ctx, tx, roll); err != nil {
			return err
		}
		return s.developments.CreateTx(ctx, tx, dev, steps)
	})
}

// snapshotRecipeSteps copies a recipe's steps into realized development
// steps, so later recipe edits never rewrite a roll's history.
func (s *RollService) snapshotRecipeSteps(ctx context.Context, userID, recipeID int64) ([]domain.DevelopmentStep, error) {
	recipe, err := s.recipes.GetByID(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, fmt.Errorf("recipe %d: %w", recipeID, store.ErrNotFound)
	}

	recipeSteps, err := s.recipes.ListSteps(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	steps := make([]domain.DevelopmentStep, 0, len(recipeSteps))
	for _, rs := range recipeSteps {
		steps = append(steps, domain.DevelopmentStep{
			ChemicalName:    rs.ChemicalName,
			Temperature:     rs.Temperature,
			DurationSeconds: rs.DurationSeconds,
			Agitation:       rs.Agitation,
			Notes:           rs.Notes,
		})
	}
	return steps, nil
}

// GetRoll returns a roll by ID, or nil when it does not exist.
func (s *RollService) GetRoll(ctx context.Context, userID, rollID int64) (*domain.Roll, error) {
	return s.rolls.GetByID(ctx, userID, rollID)
}

// ListRolls returns the user's rolls, newest first, optionally filtered by
// status.
func (s *RollService) ListRolls(ctx context.Context, userID int64, status *domain.RollStatus) ([]*domain.Roll, error) {
	return s.rolls.List(ctx, userID, status)
}

// UpdateRollDetails edits the always-editable roll fields. This is allowed
// at any status, including after the roll is developed.
func (s *RollService) UpdateRollDetails(ctx context.Context, roll *domain.Roll) (*domain.Roll, error) {
	return s.rolls.UpdateDetails(ctx, roll)
}

// DeleteRoll removes a roll with its frames and development history.
func (s *RollService) DeleteRoll(ctx context.Context, userID, rollID int64) error {
	return s.rolls.Delete(ctx, userID, rollID)
}
