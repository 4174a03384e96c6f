package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/google/uuid"
	"github.com/yourname/aidiary/internal"
	"github.com/yourname/aidiary/internal/storage"
	"github.com/yourname/aidiary/internal/validation"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

type CreateDiaryRequest struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	UserInput string `json:"userInput" validate:"notblank"`
	Content   string `json:"content" validate:"notblank"`
}

type UpdateDiaryRequest struct {
	Content   string  `json:"content" validate:"notblank"`
	UserInput *string `json:"userInput,omitempty"`
}

// ValidateCreateDiaryRequest reports the first failing field with the same
// user-facing wording the generate endpoint uses.
func ValidateCreateDiaryRequest(req *CreateDiaryRequest) error {
	if err := validate.Struct(req); err != nil {
		return toValidationError(err, func(field string) string {
			switch field {
			case "Date":
				if r := validation.ValidateDate(req.Date); !r.IsValid {
					return r.Error
				}
				return validation.MsgDateInvalid
			case "UserInput":
				return validation.MsgUserNoteEmpty
			default:
				return validation.MsgContentEmpty
			}
		})
	}
	return nil
}

func ValidateUpdateDiaryRequest(req *UpdateDiaryRequest) error {
	if err := validate.Struct(req); err != nil {
		return toValidationError(err, func(string) string { return validation.MsgContentEmpty })
	}
	return nil
}

func toValidationError(err error, message func(field string) string) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return internal.NewValidationError(err.Error(), "リクエストボディが不正です")
	}
	return internal.NewValidationError(verrs[0].Error(), message(verrs[0].Field()))
}

// DiaryService owns the diary use cases on top of an owner-scoped repository.
type DiaryService struct {
	repo   storage.DiaryRepository
	logger internal.Logger
	now    func() time.Time
}

func NewDiaryService(repo storage.DiaryRepository, logger internal.Logger) *DiaryService {
	return &DiaryService{repo: repo, logger: logger, now: time.Now}
}

func (s *DiaryService) Create(ctx context.Context, user *internal.User, req *CreateDiaryRequest) (*internal.Diary, error) {
	if err := ValidateCreateDiaryRequest(req); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	diary := &internal.Diary{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Date:      req.Date,
		UserInput: strings.TrimSpace(req.UserInput),
		Content:   strings.TrimSpace(req.Content),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateDiary(ctx, diary); err != nil {
		return nil, s.repoError(err, "failed to create diary")
	}
	return diary, nil
}

// checkID rejects ids that could never have been issued. The Postgres
// columns are UUIDs and would otherwise fail the cast instead of missing.
func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return internal.NewNotFoundError("malformed diary id")
	}
	return nil
}

func (s *DiaryService) Get(ctx context.Context, user *internal.User, id string) (*internal.Diary, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	diary, err := s.repo.GetDiary(ctx, user.ID, id)
	if err != nil {
		return nil, s.repoError(err, "failed to fetch diary")
	}
	return diary, nil
}

// List returns previews of the user's diaries, newest date first.
func (s *DiaryService) List(ctx context.Context, user *internal.User) ([]internal.DiaryListItem, error) {
	diaries, err := s.repo.ListDiaries(ctx, user.ID)
	if err != nil {
		return nil, s.repoError(err, "failed to list diaries")
	}
	items := make([]internal.DiaryListItem, 0, len(diaries))
	for i := range diaries {
		items = append(items, diaries[i].ListItem())
	}
	return items, nil
}

// Update replaces the content. A non-blank userInput replaces the note too;
// a blank one leaves it as it was.
func (s *DiaryService) Update(ctx context.Context, user *internal.User, id string, req *UpdateDiaryRequest) (*internal.Diary, error) {
	if err := ValidateUpdateDiaryRequest(req); err != nil {
		return nil, err
	}
	if err := checkID(id); err != nil {
		return nil, err
	}
	var note *string
	if req.UserInput != nil {
		if trimmed := strings.TrimSpace(*req.UserInput); trimmed != "" {
			note = &trimmed
		}
	}
	diary, err := s.repo.UpdateDiary(ctx, user.ID, id, strings.TrimSpace(req.Content), note)
	if err != nil {
		return nil, s.repoError(err, "failed to update diary")
	}
	return diary, nil
}

func (s *DiaryService) Delete(ctx context.Context, user *internal.User, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := s.repo.DeleteDiary(ctx, user.ID, id); err != nil {
		return s.repoError(err, "failed to delete diary")
	}
	return nil
}

func (s *DiaryService) repoError(err error, msg string) error {
	if errors.Is(err, internal.ErrNotFound) {
		return internal.NewNotFoundError(msg)
	}
	s.logger.Errorw(msg, "error", err)
	return internal.NewDatabaseError(msg, "", err)
}
