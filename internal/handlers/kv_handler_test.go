package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/respondo/internal/interfaces"
)

type memKVService struct {
	pairs map[string]*interfaces.KeyValuePair
}

func newMemKVService() *memKVService {
	return &memKVService{pairs: make(map[string]*interfaces.KeyValuePair)}
}

func (m *memKVService) Get(ctx context.Context, key string) (string, error) {
	pair, ok := m.pairs[strings.ToLower(key)]
	if !ok {
		return "", interfaces.ErrKeyNotFound
	}
	return pair.Value, nil
}

func (m *memKVService) GetPair(ctx context.Context, key string) (*interfaces.KeyValuePair, error) {
	pair, ok := m.pairs[strings.ToLower(key)]
	if !ok {
		return nil, interfaces.ErrKeyNotFound
	}
	return pair, nil
}

func (m *memKVService) Set(ctx context.Context, key, value, description string) error {
	m.pairs[strings.ToLower(key)] = &interfaces.KeyValuePair{Key: key, Value: value, Description: description, UpdatedAt: time.Now()}
	return nil
}

func (m *memKVService) Upsert(ctx context.Context, key, value, description string) (bool, error) {
	_, existed := m.pairs[strings.ToLower(key)]
	m.pairs[strings.ToLower(key)] = &interfaces.KeyValuePair{Key: key, Value: value, Description: description, UpdatedAt: time.Now()}
	return !existed, nil
}

func (m *memKVService) Delete(ctx context.Context, key string) error {
	if _, ok := m.pairs[strings.ToLower(key)]; !ok {
		return interfaces.ErrKeyNotFound
	}
	delete(m.pairs, strings.ToLower(key))
	return nil
}

func (m *memKVService) List(ctx context.Context) ([]interfaces.KeyValuePair, error) {
	out := make([]interfaces.KeyValuePair, 0, len(m.pairs))
	for _, pair := range m.pairs {
		out = append(out, *pair)
	}
	return out, nil
}

func (m *memKVService) GetAll(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string, len(m.pairs))
	for k, pair := range m.pairs {
		out[k] = pair.Value
	}
	return out, nil
}

func TestListMasksSensitiveValues(t *testing.T) {
	svc := newMemKVService()
	require.NoError(t, svc.Set(context.Background(), "telegram_bot_token", "123456:ABCDEFtoken", "bot token"))
	require.NoError(t, svc.Set(context.Background(), "pricing_summary", "Basic plan $10/mo", ""))
	// Not on the whitelist, must never appear
	require.NoError(t, svc.Set(context.Background(), "internal_counter", "42", ""))

	h := NewKVHandler(svc, arbor.NewLogger())

	req := httptest.NewRequest("GET", "/api/admin/config", nil)
	rec := httptest.NewRecorder()
	h.ListHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var listed []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 2)

	byKey := make(map[string]string)
	for _, entry := range listed {
		byKey[entry["key"].(string)] = entry["value"].(string)
	}
	assert.Equal(t, "1234...oken", byKey["telegram_bot_token"])
	assert.Equal(t, "Basic plan $10/mo", byKey["pricing_summary"])
	assert.NotContains(t, byKey, "internal_counter")
}

func TestSingleKeyGetReturnsFullValue(t *testing.T) {
	svc := newMemKVService()
	require.NoError(t, svc.Set(context.Background(), "telegram_bot_token", "123456:ABCDEFtoken", ""))

	h := NewKVHandler(svc, arbor.NewLogger())

	req := httptest.NewRequest("GET", "/api/admin/config/telegram_bot_token", nil)
	rec := httptest.NewRecorder()
	h.SettingHandler(rec, req, "telegram_bot_token")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "123456:ABCDEFtoken", resp["value"])
}

func TestMailerKeysAreWritable(t *testing.T) {
	h := NewKVHandler(newMemKVService(), arbor.NewLogger())

	for _, key := range []string{"smtp_from", "smtp_from_name", "smtp_use_tls", "lead_notify_to"} {
		req := httptest.NewRequest("PUT", "/api/admin/config/"+key, strings.NewReader(`{"value":"x"}`))
		rec := httptest.NewRecorder()
		h.SettingHandler(rec, req, key)
		assert.Equal(t, http.StatusCreated, rec.Code, key)
	}
}

func TestNonWhitelistedKeyIsForbidden(t *testing.T) {
	h := NewKVHandler(newMemKVService(), arbor.NewLogger())

	for _, method := range []string{"GET", "PUT", "DELETE"} {
		req := httptest.NewRequest(method, "/api/admin/config/internal_counter", strings.NewReader(`{"value":"x"}`))
		rec := httptest.NewRecorder()
		h.SettingHandler(rec, req, "internal_counter")
		assert.Equal(t, http.StatusForbidden, rec.Code, method)
	}
}

func TestPutCreatesAndUpdates(t *testing.T) {
	svc := newMemKVService()
	h := NewKVHandler(svc, arbor.NewLogger())

	req := httptest.NewRequest("PUT", "/api/admin/config/pricing_summary", strings.NewReader(`{"value":"Starter $5/mo"}`))
	rec := httptest.NewRecorder()
	h.SettingHandler(rec, req, "pricing_summary")
	assert.Equal(t, http.StatusCreated, rec.Code)

	req = httptest.NewRequest("PUT", "/api/admin/config/pricing_summary", strings.NewReader(`{"value":"Starter $6/mo"}`))
	rec = httptest.NewRecorder()
	h.SettingHandler(rec, req, "pricing_summary")
	assert.Equal(t, http.StatusOK, rec.Code)

	value, err := svc.Get(context.Background(), "pricing_summary")
	require.NoError(t, err)
	assert.Equal(t, "Starter $6/mo", value)
}

func TestDeleteSetting(t *testing.T) {
	svc := newMemKVService()
	require.NoError(t, svc.Set(context.Background(), "pricing_summary", "x", ""))
	h := NewKVHandler(svc, arbor.NewLogger())

	req := httptest.NewRequest("DELETE", "/api/admin/config/pricing_summary", nil)
	rec := httptest.NewRecorder()
	h.SettingHandler(rec, req, "pricing_summary")
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest("DELETE", "/api/admin/config/pricing_summary", nil)
	rec = httptest.NewRecorder()
	h.SettingHandler(rec, req, "pricing_summary")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
