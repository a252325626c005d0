package chat

import (
	"testing"

	"github.com/google/uuid"
)

func TestChatRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     ChatRequest
		wantErr bool
	}{
		{
			name: "valid request",
			req:  ChatRequest{SessionID: uuid.New(), Message: "Too expensive."},
		},
		{
			name:    "missing session",
			req:     ChatRequest{Message: "Too expensive."},
			wantErr: true,
		},
		{
			name:    "blank message",
			req:     ChatRequest{SessionID: uuid.New(), Message: "   "},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRequestParams_AsJSON(t *testing.T) {
	temp := 0.5
	p := RequestParams{Model: "gpt-4o-mini", MaxTokens: 100, Temperature: &temp}
	j := p.AsJSON()

	if p.JSON {
		t.Error("AsJSON must not modify the receiver")
	}
	if !j.JSON || j.Model != p.Model || j.MaxTokens != p.MaxTokens {
		t.Errorf("unexpected params: %+v", j)
	}
}
