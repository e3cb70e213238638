package firebase

import (
	"context"
	"errors"
	"testing"

	"github.com/example/parlour/internal/config"
)

func TestCredentialsOption(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantNil bool
		wantErr bool
	}{
		{"adc", config.Config{FirebaseProjectID: "p"}, true, false},
		{"file", config.Config{GoogleApplicationCredentials: "/tmp/sa.json"}, false, false},
		{"base64", config.Config{FirebaseServiceAccountJSONBase64: "eyJ0eXBlIjoic2VydmljZV9hY2NvdW50In0="}, false, false},
		{"bad base64", config.Config{FirebaseServiceAccountJSONBase64: "%%%"}, true, true},
		{"inline key", config.Config{FirebaseClientEmail: "sa@p.iam.gserviceaccount.com", FirebasePrivateKey: "key"}, false, false},
		{"email without key", config.Config{FirebaseClientEmail: "sa@p.iam.gserviceaccount.com"}, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt, err := CredentialsOption(&tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if (opt == nil) != tt.wantNil {
				t.Errorf("option nil = %v, want %v", opt == nil, tt.wantNil)
			}
		})
	}
}

func TestInitFirebaseRequiresProject(t *testing.T) {
	_, err := InitFirebase(context.Background(), &config.Config{})
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestAppConfig(t *testing.T) {
	conf := AppConfig(&config.Config{
		FirebaseProjectID:   "parlour",
		FirebaseDatabaseURL: "https://parlour.firebaseio.com",
	})
	if conf.ProjectID != "parlour" {
		t.Errorf("ProjectID = %q, want parlour", conf.ProjectID)
	}
	if conf.DatabaseURL != "https://parlour.firebaseio.com" {
		t.Errorf("DatabaseURL = %q, want https://parlour.firebaseio.com", conf.DatabaseURL)
	}
}
