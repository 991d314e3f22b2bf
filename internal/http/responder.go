package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/workspace-booking/internal/application"
	"github.com/example/workspace-booking/internal/booking"
)

var (
	errBadRequestBody       = errors.New("formato de requisição inválido.")
	errInvalidAreaID        = errors.New("identificador de espaço inválido.")
	errInvalidReservationID = errors.New("identificador de reserva inválido.")
	errMissingSessionToken  = errors.New("informe o token de autenticação.")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// handleServiceError translates the application error taxonomy into HTTP
// statuses. Rejections carry their reason code so clients can branch on it;
// storage outages map to 503 because the request was never decided.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	var rejection *application.RejectionError
	if errors.As(err, &rejection) {
		r.writeJSON(ctx, w, rejectionStatus(rejection.Reason), errorResponse{
			Reason:  string(rejection.Reason),
			Message: localizeRejection(rejection.Reason),
		})
		return
	}

	switch {
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			Reason:  "FORBIDDEN",
			Message: "Você não tem permissão para executar esta operação.",
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "O recurso solicitado não foi encontrado."})
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Message: "Já existe um recurso com esses dados."})
	case errors.Is(err, application.ErrInvalidCredentials),
		errors.Is(err, application.ErrSessionExpired),
		errors.Is(err, application.ErrSessionRevoked):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{Message: "Sessão inválida. Faça login novamente."})
	case errors.Is(err, application.ErrStorageUnavailable):
		r.writeJSON(ctx, w, http.StatusServiceUnavailable, errorResponse{
			Message: "O serviço está temporariamente indisponível. Tente novamente em instantes.",
		})
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: "Há erros nos dados informados.",
				Errors:  localizeValidationErrors(vErr),
			})
			return
		}

		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "Ocorreu um erro interno no servidor."})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

// rejectionStatus distinguishes a request the caller could fix (422) from a
// slot somebody else holds (409).
func rejectionStatus(reason booking.ReasonCode) int {
	switch reason {
	case booking.ReasonTimeConflict, booking.ReasonCapacityExceeded:
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "A requisição está malformada."
	case http.StatusUnauthorized:
		return "Autenticação necessária."
	case http.StatusForbidden:
		return "Você não tem permissão para executar esta operação."
	case http.StatusNotFound:
		return "O recurso solicitado não foi encontrado."
	case http.StatusConflict:
		return "A solicitação conflita com o estado atual do recurso."
	case http.StatusUnprocessableEntity:
		return "Há erros nos dados informados."
	case http.StatusServiceUnavailable:
		return "O serviço está temporariamente indisponível. Tente novamente em instantes."
	default:
		return "Ocorreu um erro interno no servidor."
	}
}

func localizeRejection(reason booking.ReasonCode) string {
	switch reason {
	case booking.ReasonInvalidFormat:
		return "Os dados da reserva estão em formato inválido."
	case booking.ReasonInPast:
		return "Não é possível reservar um horário no passado."
	case booking.ReasonWindowExceeded:
		return "A data está fora da janela de reservas permitida."
	case booking.ReasonNotOfficeDay:
		return "O escritório não funciona nesse dia."
	case booking.ReasonOutsideBusinessHours:
		return "O horário solicitado está fora do expediente."
	case booking.ReasonDurationOutOfBounds:
		return "A duração da reserva está fora dos limites do espaço."
	case booking.ReasonCapacityExceeded:
		return "Não há lugares disponíveis nesse período."
	case booking.ReasonTimeConflict:
		return "O espaço já está reservado nesse horário."
	default:
		return "A reserva não pôde ser aceita."
	}
}

func localizeValidationErrors(vErr *application.ValidationError) map[string]string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return nil
	}

	translated := make(map[string]string, len(vErr.FieldErrors))
	for field, msg := range vErr.FieldErrors {
		translated[field] = translateValidationMessage(msg)
	}
	return translated
}

func translateValidationMessage(message string) string {
	switch message {
	case "name is required":
		return "O nome do espaço é obrigatório."
	case "category must be MEETING_ROOM or HOT_DESK":
		return "A categoria deve ser MEETING_ROOM ou HOT_DESK."
	case "capacity must be positive":
		return "A capacidade deve ser um número inteiro positivo."
	case "minimum duration must be positive":
		return "A duração mínima deve ser positiva."
	case "maximum duration must be at least the minimum":
		return "A duração máxima deve ser maior ou igual à mínima."
	case "category cannot change while reservations exist":
		return "A categoria não pode ser alterada enquanto houver reservas."
	case "area still has reservations":
		return "O espaço ainda possui reservas associadas."
	case "reservation can no longer be cancelled":
		return "A reserva não pode mais ser cancelada."
	case "only pending reservations can be confirmed":
		return "Apenas reservas pendentes podem ser confirmadas."
	case "office hours must be a valid range within one day":
		return "O horário de funcionamento deve ser um intervalo válido dentro de um dia."
	case "business hours must be a valid range within one day":
		return "O horário comercial deve ser um intervalo válido dentro de um dia."
	case "business hours must fall within office hours":
		return "O horário comercial deve estar dentro do horário de funcionamento."
	case "reservation window cannot be negative":
		return "A janela de reservas não pode ser negativa."
	case "at least one office day is required":
		return "Informe ao menos um dia de funcionamento."
	default:
		return message
	}
}

type errorResponse struct {
	Reason  string            `json:"reason,omitempty"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}
