package messages

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/brewops/brewops/internal/shared"
)

type memoryRepo struct {
	users  map[int64]string
	items  []Message
	clock  time.Time
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		users: map[int64]string{1: "Manager", 2: "Vimalaweera", 3: "Weerasiri"},
		clock: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (r *memoryRepo) Conversations(ctx context.Context, userID int64) ([]Conversation, error) {
	latest := map[int64]Conversation{}
	for _, m := range r.items {
		other := m.ReceiverID
		if m.ReceiverID == userID {
			other = m.SenderID
		} else if m.SenderID != userID {
			continue
		}
		c := latest[other]
		if m.ReceiverID == userID && !m.Read {
			c.UnreadCount++
		}
		c.CounterpartID, c.CounterpartName = other, r.users[other]
		c.LastMessageID, c.LastSenderID, c.Body, c.Read, c.Timestamp = m.ID, m.SenderID, m.Body, m.Read, m.CreatedAt
		c.Unread = !m.Read && m.SenderID != userID
		latest[other] = c
	}
	var out []Conversation
	for _, c := range latest {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (r *memoryRepo) Chat(ctx context.Context, userID, otherID int64) ([]Message, error) {
	var out []Message
	for _, m := range r.items {
		if (m.SenderID == userID && m.ReceiverID == otherID) || (m.SenderID == otherID && m.ReceiverID == userID) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memoryRepo) Insert(ctx context.Context, m Message) (Message, error) {
	if _, ok := r.users[m.ReceiverID]; !ok {
		return Message{}, ErrRecipientNotFound
	}
	r.nextID++
	r.clock = r.clock.Add(time.Minute)
	m.ID, m.CreatedAt = r.nextID, r.clock
	r.items = append(r.items, m)
	return m, nil
}

func (r *memoryRepo) MarkRead(ctx context.Context, receiverID, id int64) (bool, error) {
	for i, m := range r.items {
		if m.ID == id && m.ReceiverID == receiverID {
			r.items[i].Read = true
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepo) MarkAllRead(ctx context.Context, receiverID, senderID int64) (int64, error) {
	var n int64
	for i, m := range r.items {
		if m.ReceiverID == receiverID && m.SenderID == senderID && !m.Read {
			r.items[i].Read = true
			n++
		}
	}
	return n, nil
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestSendValidation(t *testing.T) {
	svc := NewService(newMemoryRepo(), discard)
	ctx := context.Background()

	_, err := svc.Send(ctx, 1, SendInput{ReceiverID: 2, Body: "   "})
	require.ErrorIs(t, err, shared.ErrValidation)
	_, err = svc.Send(ctx, 1, SendInput{ReceiverID: 1, Body: "hi"})
	require.ErrorIs(t, err, ErrSelfMessage)
	_, err = svc.Send(ctx, 1, SendInput{ReceiverID: 99, Body: "hi"})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestConversationsShowLatestPerCounterpart(t *testing.T) {
	svc := NewService(newMemoryRepo(), discard)
	ctx := context.Background()

	_, err := svc.Send(ctx, 1, SendInput{ReceiverID: 2, Body: "How is production today?"})
	require.NoError(t, err)
	reply, err := svc.Send(ctx, 2, SendInput{ReceiverID: 1, Body: "On track, 480kg so far"})
	require.NoError(t, err)
	_, err = svc.Send(ctx, 1, SendInput{ReceiverID: 3, Body: "Check the quality parameters"})
	require.NoError(t, err)

	convs, err := svc.Conversations(ctx, 1)
	require.NoError(t, err)
	require.Len(t, convs, 2)
	require.Equal(t, int64(3), convs[0].CounterpartID)
	require.False(t, convs[0].Unread, "own last message is never unread")
	require.Equal(t, int64(2), convs[1].CounterpartID)
	require.Equal(t, reply.ID, convs[1].LastMessageID)
	require.True(t, convs[1].Unread)
	require.Equal(t, 1, convs[1].UnreadCount)

	_, err = svc.MarkAllRead(ctx, 1, 2)
	require.NoError(t, err)
	convs, err = svc.Conversations(ctx, 1)
	require.NoError(t, err)
	require.False(t, convs[1].Unread)

	chat, err := svc.Chat(ctx, 2, 1)
	require.NoError(t, err)
	require.Len(t, chat, 2)
}

func TestMarkReadOnlyByReceiver(t *testing.T) {
	svc := NewService(newMemoryRepo(), discard)
	ctx := context.Background()
	m, err := svc.Send(ctx, 1, SendInput{ReceiverID: 2, Body: "hello"})
	require.NoError(t, err)

	require.ErrorIs(t, svc.MarkRead(ctx, 1, m.ID), ErrMessageNotFound)
	require.NoError(t, svc.MarkRead(ctx, 2, m.ID))
}

func TestSendRoute(t *testing.T) {
	svc := NewService(newMemoryRepo(), discard)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := shared.ContextWithPrincipal(req.Context(), shared.Principal{UserID: 1, Role: shared.RoleManager})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	NewHandler(discard, svc).MountRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/send", strings.NewReader(`{"receiver_id":2,"message":" Ow, checking now "}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), `"message":"Ow, checking now"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/send", strings.NewReader(`{"message":"no receiver"}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
