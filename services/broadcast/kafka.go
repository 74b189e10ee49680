package broadcast

import (
	"context"

	"github.com/IBM/sarama"
	"github.com/bsv-blockchain/go-bt/v2"

	"github.com/bsv-blockchain/txforge/errors"
	"github.com/bsv-blockchain/txforge/settings"
	"github.com/bsv-blockchain/txforge/ulogger"
)

// KafkaRelayer publishes admitted transactions to a Kafka topic, keyed by
// txid so a partitioned topic keeps per-transaction ordering.
type KafkaRelayer struct {
	logger   ulogger.Logger
	producer sarama.SyncProducer
	topic    string
}

func NewKafkaRelayer(logger ulogger.Logger, tSettings *settings.Settings) (*KafkaRelayer, error) {
	if len(tSettings.Broadcast.KafkaHosts) == 0 {
		return nil, errors.NewConfigurationError("no kafka hosts configured")
	}

	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(tSettings.Broadcast.KafkaHosts, config)
	if err != nil {
		return nil, errors.NewServiceError("unable to connect to kafka", err)
	}

	return &KafkaRelayer{
		logger:   logger,
		producer: producer,
		topic:    tSettings.Broadcast.KafkaTopic,
	}, nil
}

func (k *KafkaRelayer) Relay(_ context.Context, tx *bt.Tx) error {
	hash := tx.TxIDChainHash()

	_, _, err := k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.ByteEncoder(hash[:]),
		Value: sarama.ByteEncoder(tx.Bytes()),
	})
	if err != nil {
		return errors.NewServiceError("failed to publish tx %s", hash.String(), err)
	}

	k.logger.Debugf("published tx %s to %s", hash.String(), k.topic)

	return nil
}

func (k *KafkaRelayer) Close() error {
	if err := k.producer.Close(); err != nil {
		return errors.NewServiceError("failed to close kafka producer", err)
	}

	return nil
}
