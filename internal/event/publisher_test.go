package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogPublisherNeverFails(t *testing.T) {
	var p Publisher = LogPublisher{}
	assert.NoError(t, p.Publish(AttemptSubmitted, map[string]interface{}{"attempt_id": "a"}))
	p.Close()
}

func TestNewAMQPPublisherRejectsBadURL(t *testing.T) {
	_, err := NewAMQPPublisher("not-a-url", "skilltest.events")
	assert.Error(t, err)
}
