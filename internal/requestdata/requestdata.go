package requestdata

import (
	"context"

	"github.com/google/uuid"
)

var requestDataKey = struct{}{}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	val := ctx.Value(requestDataKey)
	if rd, ok := val.(*RequestData); ok {
		return rd
	}
	return nil
}

// RequestData carries per-request identity. UserID is uuid.Nil for anonymous
// requests; SessionID keys the session-scoped claimable-blueprint list.
type RequestData struct {
	UserID    uuid.UUID
	SessionID string
}

// AuthorID returns the user id in the nullable form the services expect, nil
// when the request is anonymous.
func (rd *RequestData) AuthorID() *uuid.UUID {
	if rd == nil || rd.UserID == uuid.Nil {
		return nil
	}
	id := rd.UserID
	return &id
}
