// Package api expõe o cadastro por HTTP: listagem paginada com filtros,
// CRUD de pessoas (cliente/paciente), atendimentos, fotos com signed URL,
// exportação CSV e ficha em PDF.
package api

import (
	"github.com/registro/backend/internal/cache"
	"github.com/registro/backend/internal/config"
	"github.com/registro/backend/internal/email"
	"github.com/registro/backend/internal/storage"
	"gorm.io/gorm"
)

type Handler struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Cache  *cache.TTL
	Store  *storage.Store
	Signer *storage.URLSigner
	// Mail nil desativa o envio de ficha por e-mail (rota devolve 503).
	Mail *email.Config

	hashPassword                func(string) (string, error)
	sendAppointmentConfirmation func(to, fullName, when string) error
}

func (h *Handler) SetHashPassword(fn func(string) (string, error)) { h.hashPassword = fn }
func (h *Handler) SetSendAppointmentConfirmation(fn func(to, fullName, when string) error) {
	h.sendAppointmentConfirmation = fn
}

// invalidatePersonCache derruba as entradas da pessoa após qualquer escrita.
func (h *Handler) invalidatePersonCache(id string) {
	if h.Cache == nil {
		return
	}
	h.Cache.DeletePrefix("person:" + id)
}
