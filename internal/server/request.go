package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hirely/hirely/internal/db"
	"github.com/hirely/hirely/internal/server/middleware"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 1 << 20

// newValidator reports fields by their JSON names
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON decodes the request body into dst and validates it
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return decodeAndValidate(w, r, s.validator, dst)
}

func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &ErrValidation{Message: "request body too large"}
		}
		if errors.Is(err, io.EOF) {
			return &ErrValidation{Message: "request body is empty"}
		}
		return &ErrValidation{Message: "invalid request body"}
	}
	if err := v.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

// validationError converts validator errors into ErrValidation, reporting
// the first failing field.
func validationError(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		ve := validationErrors[0]
		return &ErrValidation{Field: ve.Field(), Message: ve.Tag()}
	}
	return &ErrValidation{Message: "invalid request"}
}

// pathUUID parses a UUID path parameter
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: name, Message: "invalid id"}
	}
	return id, nil
}

// queryInt parses an optional integer query parameter
func queryInt(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, &ErrValidation{Field: name, Message: "must be a non-negative integer"}
	}
	return n, nil
}

// currentUser loads the authenticated caller
func (s *Server) currentUser(r *http.Request) (*db.User, error) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		return nil, &ErrUnauthenticated{}
	}
	user, err := s.store.GetUser(r.Context(), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load current user: %w", err)
	}
	if user == nil {
		return nil, &ErrUnauthenticated{}
	}
	return user, nil
}

// requireRole loads the caller and rejects the other role with ErrForbidden
func (s *Server) requireRole(r *http.Request, role string) (*db.User, error) {
	user, err := s.currentUser(r)
	if err != nil {
		return nil, err
	}
	if user.Role != role {
		return nil, &ErrForbidden{Reason: role + " account required"}
	}
	return user, nil
}
