package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"testing"

	"github.com/dmitrijs2005/campusshop/internal/client/credentials"
	"github.com/dmitrijs2005/campusshop/internal/client/models"
	"github.com/dmitrijs2005/campusshop/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// addressBook is a fake address endpoint keyed by id.
type addressBook struct {
	mu     sync.Mutex
	nextID int64
	saved  map[int64]models.Address
	posted []map[string]any
}

func newAddressBook() *addressBook {
	return &addressBook{nextID: 1, saved: map[int64]models.Address{}}
}

func (b *addressBook) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/accounts/addresses/{$}", func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "bad json"})
			return
		}
		if raw["street_address"] == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"street_address": []string{"This field may not be blank."}})
			return
		}
		body, _ := json.Marshal(raw)
		var a models.Address
		_ = json.Unmarshal(body, &a)

		b.mu.Lock()
		b.posted = append(b.posted, raw)
		a.ID = b.nextID
		b.nextID++
		b.saved[a.ID] = a
		b.mu.Unlock()
		writeJSON(w, http.StatusCreated, a)
	})
	mux.HandleFunc("PATCH /api/accounts/addresses/{id}/{$}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		a, ok := b.saved[pathID(r)]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
			return
		}
		var patch models.Address
		_ = json.NewDecoder(r.Body).Decode(&patch)
		a.City = patch.City
		a.IsDefault = patch.IsDefault
		b.saved[a.ID] = a
		writeJSON(w, http.StatusOK, a)
	})
	mux.HandleFunc("DELETE /api/accounts/addresses/{id}/{$}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		id := pathID(r)
		if _, ok := b.saved[id]; !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
			return
		}
		delete(b.saved, id)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/accounts/addresses/{$}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := make([]models.Address, 0, len(b.saved))
		for id := int64(1); id < b.nextID; id++ {
			if a, ok := b.saved[id]; ok {
				list = append(list, a)
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"count": len(list), "results": list})
	})
	return mux
}

func (b *addressBook) requests() []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]map[string]any(nil), b.posted...)
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id
}

func TestAddresses_CreateUpdateDelete(t *testing.T) {
	book := newAddressBook()
	c, _ := newTestClient(t, book.handler(), credentials.Pair{Access: "A"})
	ctx := context.Background()

	created, err := c.CreateAddress(ctx, models.Address{
		ID:            99,
		StreetAddress: "Hall 3, Room 12",
		City:          "Kumasi",
		State:         "Ashanti",
		PostalCode:    "00233",
		IsDefault:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.True(t, created.IsDefault)
	posted := book.requests()
	require.Len(t, posted, 1)
	_, sentID := posted[0]["id"]
	assert.False(t, sentID, "a new address must not carry an id")

	created.City = "Accra"
	created.IsDefault = false
	updated, err := c.UpdateAddress(ctx, *created)
	require.NoError(t, err)
	assert.Equal(t, "Accra", updated.City)
	assert.False(t, updated.IsDefault)

	list, err := c.ListAddresses(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Accra", list[0].City)

	require.NoError(t, c.DeleteAddress(ctx, created.ID))
	list, err = c.ListAddresses(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAddresses_Errors(t *testing.T) {
	c, _ := newTestClient(t, newAddressBook().handler(), credentials.Pair{Access: "A"})
	ctx := context.Background()

	_, err := c.CreateAddress(ctx, models.Address{City: "Kumasi"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, FieldErrors{"street_address": {"This field may not be blank."}}, ve.Fields())

	_, err = c.UpdateAddress(ctx, models.Address{ID: 42, City: "Tamale"})
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = c.DeleteAddress(ctx, 42)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, "Not found.", MessageOf(err, "Failed to delete address"))
}
