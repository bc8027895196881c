package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAssignsSequentialSeqs(t *testing.T) {
	log := NewLog()

	s0 := log.Info("starting", nil)
	s1 := log.Progress("patient 1/3", map[string]interface{}{"progress": 33})
	s2 := log.Success("done", nil)

	assert.Equal(t, 0, s0)
	assert.Equal(t, 1, s1)
	assert.Equal(t, 2, s2)
	assert.Equal(t, 3, log.Len())
	assert.Equal(t, 2, log.LastSeq())
}

func TestSinceReplay(t *testing.T) {
	log := NewLog()
	log.Info("a", nil)
	log.Info("b", nil)
	log.Info("c", nil)

	tail := log.Since(1)
	require.Len(t, tail, 2)
	assert.Equal(t, "b", tail[0].Message)
	assert.Equal(t, "c", tail[1].Message)

	assert.Nil(t, log.Since(3))
	assert.Len(t, log.Since(-5), 3)
}

func TestSubscribeReceivesLiveEvents(t *testing.T) {
	log := NewLog()
	ch := log.Subscribe()
	defer log.Unsubscribe(ch)

	log.Error("stage failed", map[string]interface{}{"stage": "urgency"})

	select {
	case ev := <-ch:
		assert.Equal(t, TypeError, ev.Type)
		assert.Equal(t, "stage failed", ev.Message)
		assert.Equal(t, "urgency", ev.Data["stage"])
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}

func TestSlowSubscriberDoesNotBlockProducer(t *testing.T) {
	log := NewLog()
	ch := log.Subscribe()
	defer log.Unsubscribe(ch)

	// Overfill the buffer; Append must never block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < SubscriberChannelBufferSize*2; i++ {
			log.Info("flood", nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("producer blocked on slow subscriber")
	}

	// Everything is still recoverable from the log itself.
	assert.Equal(t, SubscriberChannelBufferSize*2, log.Len())
}

func TestResetClearsLogKeepsSubscribers(t *testing.T) {
	log := NewLog()
	ch := log.Subscribe()
	defer log.Unsubscribe(ch)

	log.Info("old run", nil)
	log.Reset()

	assert.Equal(t, 0, log.Len())
	assert.Equal(t, -1, log.LastSeq())

	seq := log.Info("new run", nil)
	assert.Equal(t, 0, seq)

	// Drain: subscriber got both the pre- and post-reset events.
	var got []Event
	for {
		select {
		case ev := <-ch:
			got = append(got, ev)
			continue
		default:
		}
		break
	}
	require.Len(t, got, 2)
	assert.Equal(t, "new run", got[1].Message)
}

func TestHeartbeatInjectsWhenQuiet(t *testing.T) {
	log := NewLog()
	ch := log.Subscribe()
	defer log.Unsubscribe(ch)

	hb := NewHeartbeat(log, 10*time.Millisecond)
	hb.Start()
	defer hb.Stop()

	select {
	case ev := <-ch:
		assert.Equal(t, TypeHeartbeat, ev.Type)
		assert.Equal(t, -1, ev.Seq)
	case <-time.After(time.Second):
		t.Fatal("no heartbeat delivered")
	}

	// Heartbeats never land in the log.
	assert.Equal(t, 0, log.Len())
}
