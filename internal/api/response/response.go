// Package response padroniza as respostas JSON dos handlers.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"stockroom/internal/domain"
	apperror "stockroom/internal/errors"
	"stockroom/internal/pkg/logger"
)

// StockErrorResponse é a resposta de INSUFFICIENT_STOCK, com o componente e a quantidade disponível.
// @Description Resposta de estoque insuficiente.
type StockErrorResponse struct {
	domain.ErrorResponse
	ComponentID string `json:"component_id" example:"5f0c..."`
	Available   int    `json:"available" example:"0"`
}

// Handle envia data com successStatus, ou o erro mapeado pela taxonomia do apperror.
func Handle(w http.ResponseWriter, r *http.Request, log logger.Logger, data interface{}, err error, successStatus int) {
	if err != nil {
		Error(w, r, log, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(successStatus)
	log.Debug("Requisição concluída com sucesso", map[string]interface{}{
		"method": r.Method,
		"path":   r.URL.Path,
		"status": successStatus,
	})

	if data != nil {
		if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
			log.Error("Falha ao codificar JSON de resposta", jsonErr)
		}
	}
}

// Error escreve o corpo domain.ErrorResponse para err.
func Error(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= http.StatusInternalServerError {
		log.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		log.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{"path": r.URL.Path})
	}

	var body interface{} = domain.ErrorResponse{Code: status, Category: category, Message: message}
	var stockErr *apperror.InsufficientStockError
	if errors.As(err, &stockErr) {
		body = StockErrorResponse{
			ErrorResponse: domain.ErrorResponse{Code: status, Category: category, Message: message},
			ComponentID:   stockErr.ComponentID,
			Available:     stockErr.Available,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Decode lê o corpo JSON em dst, recusando campos desconhecidos.
func Decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.NewValidationError("Payload inválido. Verifique o formato JSON.")
	}
	return nil
}

// Pagination lê limit e offset da query string. Valores ausentes ficam em zero.
func Pagination(r *http.Request) (limit, offset int, err error) {
	q := r.URL.Query()
	if limit, err = intParam(q.Get("limit"), "limit"); err != nil {
		return 0, 0, err
	}
	if offset, err = intParam(q.Get("offset"), "offset"); err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}

// BoolParam lê um parâmetro booleano opcional da query string.
func BoolParam(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperror.NewValidationError(fmt.Sprintf("O parâmetro %s deve ser booleano.", name))
	}
	return v, nil
}

func intParam(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, apperror.NewValidationError(fmt.Sprintf("O parâmetro %s deve ser um inteiro não negativo.", name))
	}
	return v, nil
}
