package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessageStatusChanged(t *testing.T) {
	msg, err := BuildMessage(EventCaseStatusChanged, "owner@example.com", Data{
		RecipientName: "Pat",
		Address:       "12 Oak Ave, Baltimore, MD 21201",
		OldStatus:     "SUBMITTED",
		NewStatus:     "IN_PROGRESS",
	})
	require.NoError(t, err)

	assert.Equal(t, "owner@example.com", msg.Recipient)
	assert.Equal(t, "Case status changed to IN_PROGRESS", msg.Subject)
	assert.Contains(t, msg.Text, "from SUBMITTED to IN_PROGRESS")
	assert.Contains(t, msg.HTML, "<p>Hello Pat,</p>")
}

func TestBuildMessageEscapesHTML(t *testing.T) {
	msg, err := BuildMessage(EventJobCompleted, "a@b.co", Data{Address: "<script>x</script>"})
	require.NoError(t, err)

	assert.Contains(t, msg.Text, "<script>x</script>")
	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "Hello there,")
}

func TestBuildMessageCheckoutAndClaim(t *testing.T) {
	msg, err := BuildMessage(EventCheckoutCompleted, "a@b.co", Data{Total: 11125, CaseCount: 2, TransactionID: "tx-1"})
	require.NoError(t, err)
	assert.Equal(t, "Payment received: $111.25", msg.Subject)
	assert.Contains(t, msg.Text, "2 case(s)")

	due := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	msg, err = BuildMessage(EventJobClaimed, "a@b.co", Data{ContractorName: "Sam", Address: "1 Main", DueDate: &due})
	require.NoError(t, err)
	assert.Contains(t, msg.Text, "Sam claimed the posting job for 1 Main.")
	assert.Contains(t, msg.Text, "Mar 4, 2026")
}

func TestBuildMessageUnknownEvent(t *testing.T) {
	_, err := BuildMessage("nope", "a@b.co", Data{})
	assert.Error(t, err)
}

func TestEventsHaveTemplates(t *testing.T) {
	for _, event := range Events() {
		_, err := BuildMessage(event, "a@b.co", Data{CaseType: "FTPR"})
		assert.NoError(t, err, event)
	}
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	require.NoError(t, NewLogSender(log).Send(context.Background(), Message{Recipient: "a@b.co", Subject: "Hi"}))
	assert.Contains(t, buf.String(), `"recipient":"a@b.co"`)
}

type failingSender struct{ err error }

func (f failingSender) Send(context.Context, Message) error { return f.err }

func TestMultiSenderCollectsErrors(t *testing.T) {
	boom := errors.New("boom")
	err := MultiSender{failingSender{}, failingSender{err: boom}}.Send(context.Background(), Message{})
	assert.ErrorIs(t, err, boom)

	assert.NoError(t, MultiSender{failingSender{}}.Send(context.Background(), Message{}))
}

func TestFormatTelegramEscapes(t *testing.T) {
	out := FormatTelegram(Message{Subject: "A & B", Recipient: "x@y.z", Text: "<hi>"})
	assert.Contains(t, out, "<b>A &amp; B</b>")
	assert.Contains(t, out, "&lt;hi&gt;")
}
