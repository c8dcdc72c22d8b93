package transport

import (
	"context"
	"net/http"
	"strings"

	"tidywork/internal/shared/auth"
	"tidywork/internal/shared/logger"
)

type contextKey string

const (
	contextKeyWorkerID contextKey = "worker_id"
	contextKeyRole     contextKey = "role"
)

// JWTMiddleware проверяет JWT токен, role=WORKER и что токен выписан для
// воркера этого агента.
func JWTMiddleware(jwtService *auth.JWTService, workerID string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				log.Warn(logger.Entry{
					Action:  "jwt_middleware_missing_token",
					Message: "authorization header missing",
				})
				respondError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				log.Warn(logger.Entry{
					Action:  "jwt_middleware_invalid_format",
					Message: "invalid authorization header format",
				})
				respondError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			claims, err := jwtService.ValidateToken(parts[1])
			if err != nil {
				log.Warn(logger.Entry{
					Action:  "jwt_middleware_invalid_token",
					Message: err.Error(),
					Error:   &logger.ErrObj{Msg: err.Error()},
				})
				respondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			if claims.Role != "WORKER" {
				log.Warn(logger.Entry{
					Action:  "jwt_middleware_forbidden_role",
					Message: "user does not have WORKER role",
					Additional: map[string]any{
						"worker_id": claims.WorkerID,
						"role":      claims.Role,
					},
				})
				respondError(w, http.StatusForbidden, "access denied: WORKER role required")
				return
			}

			if claims.WorkerID != workerID {
				log.Warn(logger.Entry{
					Action:  "jwt_middleware_worker_mismatch",
					Message: "token issued for another worker",
					Additional: map[string]any{
						"token_worker_id": claims.WorkerID,
						"agent_worker_id": workerID,
					},
				})
				respondError(w, http.StatusForbidden, "token does not match this agent's worker")
				return
			}

			ctx := context.WithValue(r.Context(), contextKeyWorkerID, claims.WorkerID)
			ctx = context.WithValue(ctx, contextKeyRole, claims.Role)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetWorkerIDFromContext извлекает worker_id из контекста
func GetWorkerIDFromContext(ctx context.Context) (string, bool) {
	workerID, ok := ctx.Value(contextKeyWorkerID).(string)
	return workerID, ok
}
