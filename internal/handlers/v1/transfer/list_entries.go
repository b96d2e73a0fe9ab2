package transfer

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/respond"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/service"
	"github.com/carson-networks/ledger-server/internal/storage/entry"
)

// ListEntriesCursor bundles position, limit and maxCreationTime so later pages see the same
// snapshot of the ledger as the first one.
type ListEntriesCursor struct {
	Position        int    `json:"position" minimum:"0" doc:"Numeric offset position for the next page"`
	Limit           int    `json:"limit" minimum:"1" maximum:"100" doc:"Page size used for this cursor"`
	MaxCreationTime string `json:"maxCreationTime" format:"date-time" doc:"Exclusive upper bound on createdAt locked in from the first page"`
}

type ListEntriesBody struct {
	AccountID string             `json:"accountId,omitempty" doc:"Only entries involving this account. Defaults to the caller's own account for users"`
	Kinds     []string           `json:"kinds,omitempty" doc:"Only these entry kinds"`
	Statuses  []string           `json:"statuses,omitempty" doc:"Only these entry statuses"`
	Since     string             `json:"since,omitempty" doc:"RFC3339 inclusive lower bound"`
	Oldest    bool               `json:"oldestFirst,omitempty" doc:"Order oldest first instead of newest first"`
	Cursor    *ListEntriesCursor `json:"cursor,omitempty" doc:"Cursor from a previous response to fetch the next page"`
}

type ListEntriesInput struct {
	Body ListEntriesBody
}

type ListEntriesResponseBody struct {
	Entries    []Entry            `json:"entries" doc:"Page of ledger entries"`
	NextCursor *ListEntriesCursor `json:"nextCursor,omitempty" doc:"Cursor to fetch the next page, absent on the last page"`
}

type ListEntriesOutput struct {
	Body ListEntriesResponseBody
}

type entryLister interface {
	ListEntries(ctx context.Context, caller auth.Identity, query service.EntryQuery, cursor *service.Cursor) ([]*entry.Entry, *service.Cursor, error)
}

// ListEntriesHandler handles POST /v1/entry/list.
type ListEntriesHandler struct {
	TransferService entryLister
}

func NewListEntriesHandler(svc entryLister) *ListEntriesHandler {
	return &ListEntriesHandler{TransferService: svc}
}

func (h *ListEntriesHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-entries",
		Method:      http.MethodPost,
		Path:        "/v1/entry/list",
		Summary:     "List ledger entries",
		Description: "Returns a paginated, filtered view of the ledger. Users only see entries involving their own account.",
		Tags:        []string{"Transfers"},
	}, h.handle)
}

// parseListEntriesInput builds the query and cursor. A cursor's maxCreationTime becomes the query's
// upper bound. The first page leaves it unset for the service to pin.
func parseListEntriesInput(input *ListEntriesInput) (service.EntryQuery, *service.Cursor, error) {
	var query service.EntryQuery
	body := input.Body

	if body.AccountID != "" {
		id, err := respond.ParseID("accountId", body.AccountID)
		if err != nil {
			return query, nil, err
		}
		query.AccountID = &id
	}
	for _, k := range body.Kinds {
		kind, err := entry.ParseKind(k)
		if err != nil {
			return query, nil, huma.NewError(http.StatusBadRequest, "invalid kind", err)
		}
		query.Kinds = append(query.Kinds, kind)
	}
	for _, s := range body.Statuses {
		status, err := entry.ParseStatus(s)
		if err != nil {
			return query, nil, huma.NewError(http.StatusBadRequest, "invalid status", err)
		}
		query.Statuses = append(query.Statuses, status)
	}
	since, err := respond.ParseTime("since", body.Since)
	if err != nil {
		return query, nil, err
	}
	query.Since = since
	if body.Oldest {
		query.Order = entry.OrderOldestFirst
	}

	var cursor *service.Cursor
	if body.Cursor != nil {
		pinned, err := respond.ParseTime("cursor maxCreationTime", body.Cursor.MaxCreationTime)
		if err != nil {
			return query, nil, err
		}
		query.Until = pinned
		cursor = &service.Cursor{Position: body.Cursor.Position, Limit: body.Cursor.Limit}
	}
	return query, cursor, nil
}

func (h *ListEntriesHandler) handle(ctx context.Context, input *ListEntriesInput) (*ListEntriesOutput, error) {
	caller, err := respond.Caller(ctx)
	if err != nil {
		return nil, err
	}
	query, cursor, err := parseListEntriesInput(input)
	if err != nil {
		return nil, err
	}

	stopTimer := logging.Time(ctx, "listEntriesMs")
	entries, next, err := h.TransferService.ListEntries(ctx, caller, query, cursor)
	stopTimer()
	if err != nil {
		return nil, respond.Error("failed to list entries", err)
	}

	if logData := logging.GetLogData(ctx); logData != nil {
		logData.AddData("entryCount", len(entries))
	}

	resp := ListEntriesResponseBody{Entries: make([]Entry, len(entries))}
	for i, e := range entries {
		resp.Entries[i] = fromStorage(e)
	}
	if next != nil {
		resp.NextCursor = &ListEntriesCursor{Position: next.Position, Limit: next.Limit}
		if next.Until != nil {
			resp.NextCursor.MaxCreationTime = next.Until.UTC().Format(time.RFC3339Nano)
		}
	}
	return &ListEntriesOutput{Body: resp}, nil
}
