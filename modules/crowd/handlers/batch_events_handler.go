package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/taskpool/modules/crowd/domain/events"
	"github.com/iota-uz/taskpool/pkg/application"
	"github.com/iota-uz/taskpool/pkg/configuration"
)

type BatchEventsHandler struct {
	logger *logrus.Logger
}

func RegisterBatchEventHandlers(app application.Application) {
	handler := &BatchEventsHandler{
		logger: configuration.Use().Logger(),
	}
	app.EventPublisher().Subscribe(handler.onTemplateCreated)
	app.EventPublisher().Subscribe(handler.onBatchCreated)
	app.EventPublisher().Subscribe(handler.onBatchPublished)
	app.EventPublisher().Subscribe(handler.onBatchCancelled)
	app.EventPublisher().Subscribe(handler.onBatchDeleted)
}

func (h *BatchEventsHandler) onTemplateCreated(event events.TemplateCreated) {
	h.logger.WithFields(logrus.Fields{
		"template_id": event.TemplateID,
		"name":        event.Name,
		"fields":      event.Fields,
	}).Info("crowd: template created")
}

func (h *BatchEventsHandler) onBatchCreated(event events.BatchCreated) {
	h.logger.WithFields(logrus.Fields{
		"batch_id":    event.BatchID,
		"template_id": event.TemplateID,
		"name":        event.Name,
		"total_tasks": event.TotalTasks,
	}).Info("crowd: batch created")
}

func (h *BatchEventsHandler) onBatchPublished(event events.BatchPublished) {
	h.logger.WithField("batch_id", event.BatchID).Info("crowd: batch published")
}

func (h *BatchEventsHandler) onBatchCancelled(event events.BatchCancelled) {
	h.logger.WithField("batch_id", event.BatchID).Info("crowd: batch cancelled")
}

func (h *BatchEventsHandler) onBatchDeleted(event events.BatchDeleted) {
	h.logger.WithField("batch_id", event.BatchID).Info("crowd: batch deleted")
}
