package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"
	"github.com/supabase/siwe/internal/api/apierrors"
	"github.com/supabase/siwe/internal/conf"
	"github.com/supabase/siwe/internal/utilities"
)

// maxRequestBodySize bounds JSON request bodies. SIWE messages are a few
// hundred bytes.
const maxRequestBodySize = 64 * 1024

func addRequestID(globalConfig *conf.GlobalConfiguration) middlewareHandler {
	return func(w http.ResponseWriter, r *http.Request) (context.Context, error) {
		id := ""
		if globalConfig.API.RequestIDHeader != "" {
			id = r.Header.Get(globalConfig.API.RequestIDHeader)
		}
		if id == "" {
			uid := uuid.Must(uuid.NewV4())
			id = uid.String()
		}

		ctx := r.Context()
		ctx = utilities.WithRequestID(ctx, id)
		return ctx, nil
	}
}

func sendJSON(w http.ResponseWriter, status int, obj interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	b, err := json.Marshal(obj)
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("Error encoding json response: %v", obj))
	}
	w.WriteHeader(status)
	_, err = w.Write(b)
	return err
}

type RequestParams interface {
	MessageParams |
		VerifyParams
}

// retrieveRequestParams is a generic method that unmarshals the request body into the params struct provided
func retrieveRequestParams[A RequestParams](r *http.Request, params *A) error {
	body, err := utilities.GetBodyBytes(r, maxRequestBodySize)
	if err != nil {
		return apierrors.NewInternalServerError("Could not read body into byte slice").WithInternalError(err)
	}
	if len(body) == 0 {
		return apierrors.NewBadRequestError(apierrors.ErrorCodeBadJSON, "Request body is empty")
	}
	if err := json.Unmarshal(body, params); err != nil {
		return apierrors.NewBadRequestError(apierrors.ErrorCodeBadJSON, "Could not parse request body as JSON: %v", err)
	}
	return nil
}
