package messaging

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/common"
	"github.com/ternarybob/respondo/internal/interfaces"
	"github.com/ternarybob/respondo/internal/models"
)

type mapKV struct {
	values map[string]string
}

func (m *mapKV) Get(ctx context.Context, key string) (string, error) {
	if v, ok := m.values[strings.ToLower(key)]; ok {
		return v, nil
	}
	return "", interfaces.ErrKeyNotFound
}

func (m *mapKV) GetPair(ctx context.Context, key string) (*interfaces.KeyValuePair, error) {
	v, err := m.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return &interfaces.KeyValuePair{Key: key, Value: v}, nil
}

func (m *mapKV) Set(ctx context.Context, key, value, description string) error {
	m.values[strings.ToLower(key)] = value
	return nil
}

func (m *mapKV) Upsert(ctx context.Context, key, value, description string) (bool, error) {
	_, existed := m.values[strings.ToLower(key)]
	m.values[strings.ToLower(key)] = value
	return !existed, nil
}

func (m *mapKV) Delete(ctx context.Context, key string) error {
	delete(m.values, strings.ToLower(key))
	return nil
}

func (m *mapKV) List(ctx context.Context) ([]interfaces.KeyValuePair, error) {
	return nil, nil
}

func (m *mapKV) GetAll(ctx context.Context) (map[string]string, error) {
	return m.values, nil
}

func TestTelegramSender_Send(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	kv := &mapKV{values: map[string]string{
		"telegram_api_base_url": server.URL,
		"telegram_bot_token":    "123:abc",
	}}
	sender := NewTelegramSender(&common.TelegramConfig{}, kv, arbor.NewLogger())

	if err := sender.Send(context.Background(), "555001", "hello"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if gotPath != "/bot123:abc/sendMessage" {
		t.Errorf("Unexpected path %q", gotPath)
	}
	if gotBody["chat_id"] != "555001" || gotBody["text"] != "hello" {
		t.Errorf("Unexpected payload %v", gotBody)
	}
}

func TestWhatsAppSender_Send(t *testing.T) {
	var gotAuth string
	var gotPath string
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	kv := &mapKV{values: map[string]string{"graph_api_base_url": server.URL}}
	sender := NewWhatsAppSender(&common.WhatsAppConfig{
		AccessToken:   "wa-token",
		PhoneNumberID: "1050",
	}, "v19.0", kv, arbor.NewLogger())

	if err := sender.Send(context.Background(), "4477001", "your order shipped"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if gotPath != "/v19.0/1050/messages" {
		t.Errorf("Unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer wa-token" {
		t.Errorf("Expected bearer auth, got %q", gotAuth)
	}
	if gotBody["messaging_product"] != "whatsapp" || gotBody["to"] != "4477001" {
		t.Errorf("Unexpected payload %v", gotBody)
	}
}

func TestWhatsAppSender_NotConfigured(t *testing.T) {
	kv := &mapKV{values: map[string]string{}}
	sender := NewWhatsAppSender(&common.WhatsAppConfig{}, "v19.0", kv, arbor.NewLogger())

	if err := sender.Send(context.Background(), "1", "hi"); err == nil {
		t.Error("Expected not-configured error")
	}
}

func TestSMSSender_Send(t *testing.T) {
	var gotPath string
	var gotUser, gotPass string
	var gotForm map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		r.ParseForm()
		gotForm = map[string]string{
			"From": r.PostFormValue("From"),
			"To":   r.PostFormValue("To"),
			"Body": r.PostFormValue("Body"),
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	kv := &mapKV{values: map[string]string{"twilio_api_base_url": server.URL}}
	sender := NewSMSSender(&common.SMSConfig{
		AccountSID: "AC123",
		AuthToken:  "tw-secret",
		FromNumber: "+15550100",
	}, kv, arbor.NewLogger())

	if err := sender.Send(context.Background(), "+15550199", "your table is booked"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if gotPath != "/2010-04-01/Accounts/AC123/Messages.json" {
		t.Errorf("Unexpected path %q", gotPath)
	}
	if gotUser != "AC123" || gotPass != "tw-secret" {
		t.Errorf("Expected basic auth with account credentials, got %s:%s", gotUser, gotPass)
	}
	if gotForm["From"] != "+15550100" || gotForm["To"] != "+15550199" || gotForm["Body"] != "your table is booked" {
		t.Errorf("Unexpected form payload %v", gotForm)
	}
}

func TestSMSSender_NotConfigured(t *testing.T) {
	kv := &mapKV{values: map[string]string{}}
	sender := NewSMSSender(&common.SMSConfig{}, kv, arbor.NewLogger())

	if err := sender.Send(context.Background(), "+15550199", "hi"); err == nil {
		t.Error("Expected not-configured error")
	}
}

func TestRegistry_WebHasNoSender(t *testing.T) {
	kv := &mapKV{values: map[string]string{}}
	registry := NewRegistry(&common.ChannelsConfig{}, kv, arbor.NewLogger())

	if sender := registry.SenderFor(models.PlatformWeb); sender != nil {
		t.Errorf("Expected nil sender for web, got %T", sender)
	}
	if sender := registry.SenderFor(models.PlatformTelegram); sender == nil {
		t.Error("Expected telegram sender")
	}
	if sender := registry.SenderFor(models.PlatformSMS); sender == nil {
		t.Error("Expected sms sender")
	}
}
