package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/julianstephens/keepstreak/internal/constants"
	apperrors "github.com/julianstephens/keepstreak/internal/errors"
	"github.com/julianstephens/keepstreak/internal/models"
	"github.com/julianstephens/keepstreak/internal/utils"
	"github.com/julianstephens/keepstreak/internal/validation"
)

const maxBodyBytes = 1 << 20

// Number is a JSON value that may be sent either as a number or as a numeric
// string. Anything else marks it invalid instead of failing the whole decode.
type Number struct {
	Set     bool
	Invalid bool
	Value   float64
}

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = Number{}
		return nil
	}
	n.Set = true

	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		n.Invalid = true
		return nil
	}
	switch v := raw.(type) {
	case float64:
		n.Value = v
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			n.Invalid = true
			return nil
		}
		n.Value = f
	default:
		n.Invalid = true
	}
	return nil
}

// Ptr returns nil when the value was omitted
func (n Number) Ptr() (*float64, error) {
	if !n.Set {
		return nil, nil
	}
	if n.Invalid {
		return nil, apperrors.ErrInvalidProgress
	}
	v := n.Value
	return &v, nil
}

type completeRequest struct {
	Date      string `json:"date" validate:"required"`
	Completed *bool  `json:"completed" validate:"required"`
	Progress  Number `json:"progress"`
}

type progressRequest struct {
	Date      string `json:"date" validate:"required"`
	Progress  Number `json:"progress"`
	Increment Number `json:"increment"`
}

type habitRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	Type        string `json:"type" validate:"omitempty,oneof=Good Bad To-Do"`
	Repeat      string `json:"repeat"`
	Goal        int    `json:"goal" validate:"gte=0"`
	GoalUnit    string `json:"goalUnit" validate:"max=30"`
	ActiveDays  []int  `json:"activeDays" validate:"omitempty,max=7,dive,min=1,max=7"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

func (req habitRequest) toHabit(userID string) (models.Habit, error) {
	h := models.Habit{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		Type:        constants.HabitType(req.Type),
		Repeat:      req.Repeat,
		Goal:        req.Goal,
		GoalUnit:    req.GoalUnit,
		ActiveDays:  req.ActiveDays,
	}
	if req.StartDate != "" {
		start, err := parseDate(req.StartDate)
		if err != nil {
			return models.Habit{}, err
		}
		h.StartDate = start
	}
	if req.EndDate != "" {
		end, err := parseDate(req.EndDate)
		if err != nil {
			return models.Habit{}, err
		}
		h.EndDate = &end
	}
	return h, nil
}

var errEmptyBody = errors.New("request body is empty")

// decode reads a JSON body into v and runs its validate tags. Malformed
// bodies are reported as bad_request; failed constraints as invalid_argument.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		err = errEmptyBody
	}
	if err != nil {
		writeErrorCode(w, r, codeBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	if err := validation.Struct(v); err != nil {
		writeError(w, r, invalidRequest(err))
		return false
	}
	return true
}

func invalidRequest(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", apperrors.ErrInvalidArgument, strings.Join(msgs, "; "))
}

func parseDate(s string) (time.Time, error) {
	t, err := utils.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err)
	}
	return t, nil
}
