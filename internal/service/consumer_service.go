package service

import (
	"context"
	"encoding/json"

	"candidate-router/internal/dto"
	"candidate-router/internal/entity"
	"candidate-router/internal/pkg/logger"
	"candidate-router/internal/repository/unitofwork"
	"candidate-router/pkg/database"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// ComparisonRecorder persists shadow comparison samples.
type ComparisonRecorder interface {
	RecordComparison(ctx context.Context, sample *entity.ABComparisonSample) error
}

type consumerService struct {
	pubSub      *gochannel.GoChannel
	topicName   string
	uowFactory  unitofwork.RepositoryFactory
	comparisons ComparisonRecorder
	logger      logger.ILogger

	// delivery attempts per watermill message; only the consumer goroutine
	// touches it
	attempts map[string]int
}

// maxDeliveries bounds redelivery of a sample whose write keeps failing.
// gochannel redelivers a nacked message before delivering the next one.
const maxDeliveries = 3

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	comparisons ComparisonRecorder,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:      pubSub,
		topicName:   topicName,
		uowFactory:  uowFactory,
		comparisons: comparisons,
		logger:      logger,
		attempts:    make(map[string]int),
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.SampleMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("CONSUMER", "Failed to unmarshal sample", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack() // malformed payloads never succeed on retry
		return
	}

	switch {
	case payload.Performance != nil:
		sample := performanceFromDTO(payload.Performance)
		if err := cs.uowFactory.NewUnitOfWork(ctx).PerformanceSampleRepository().Create(ctx, sample); err != nil {
			cs.retryOrDrop(msg, "performance", sample.MessageId, err)
			return
		}
	case payload.Comparison != nil:
		sample := comparisonFromDTO(payload.Comparison)
		if err := cs.comparisons.RecordComparison(ctx, sample); err != nil {
			cs.retryOrDrop(msg, "comparison", sample.MessageId, err)
			return
		}
	default:
		cs.logger.Warn("CONSUMER", "Empty sample message", map[string]interface{}{"message_id": msg.UUID})
	}

	delete(cs.attempts, msg.UUID)
	msg.Ack()
}

// retryOrDrop nacks a failed write for redelivery unless the error is
// permanent or the message already used its deliveries, in which case the
// sample is dropped.
func (cs *consumerService) retryOrDrop(msg *message.Message, kind string, messageId string, err error) {
	cs.attempts[msg.UUID]++
	attempt := cs.attempts[msg.UUID]
	details := map[string]interface{}{
		"kind":            kind,
		"chat_message_id": messageId,
		"attempt":         attempt,
		"error":           err.Error(),
	}

	if database.IsPermanent(err) || attempt >= maxDeliveries {
		cs.logger.Error("CONSUMER", "Dropping sample that cannot be stored", details)
		delete(cs.attempts, msg.UUID)
		msg.Ack()
		return
	}
	cs.logger.Warn("CONSUMER", "Failed to store sample, retrying", details)
	msg.Nack()
}

func performanceFromDTO(d *dto.PerformanceSampleDTO) *entity.PerformanceSample {
	return &entity.PerformanceSample{
		System:         entity.System(d.System),
		Success:        d.Success,
		Errored:        d.Errored,
		Confidence:     d.Confidence,
		ResponseTimeMs: d.ResponseTimeMs,
		CandidateId:    d.CandidateId,
		MessageId:      d.MessageId,
		Intent:         d.Intent,
		RecordedAt:     d.RecordedAt,
	}
}

func comparisonFromDTO(d *dto.ComparisonSampleDTO) *entity.ABComparisonSample {
	return &entity.ABComparisonSample{
		MessageId:        d.MessageId,
		CandidateId:      d.CandidateId,
		RoutedTo:         entity.System(d.RoutedTo),
		NewSuccess:       d.NewSuccess,
		NewConfidence:    d.NewConfidence,
		LegacySuccess:    d.LegacySuccess,
		LegacyConfidence: d.LegacyConfidence,
		RecordedAt:       d.RecordedAt,
	}
}
