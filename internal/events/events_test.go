package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	got []*Event
	err error
}

func (r *recordingPublisher) Publish(event *Event) error {
	r.got = append(r.got, event)
	return r.err
}

func TestFanout_DeliversToAll(t *testing.T) {
	failing := &recordingPublisher{err: errors.New("broker down")}
	healthy := &recordingPublisher{}

	event := &Event{ID: 1, EventType: PostCreated}
	err := Fanout{failing, healthy}.Publish(event)

	require.NoError(t, err)
	require.Equal(t, []*Event{event}, failing.got)
	require.Equal(t, []*Event{event}, healthy.got)
}

func TestNATSPublisher_Subject(t *testing.T) {
	require.Equal(t, "photogenie.post_created", NewNATSPublisher(nil, "photogenie").Subject(PostCreated))
	require.Equal(t, "post_deleted", NewNATSPublisher(nil, "").Subject(PostDeleted))
}
