package config

import (
	"log"

	supa "github.com/supabase-community/supabase-go"
)

// NewSupabaseClient builds the storage client used for food image uploads.
func NewSupabaseClient(cfg *Config) *supa.Client {
	client, err := supa.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, nil)
	if err != nil {
		log.Fatalf("Failed to create Supabase client: %v", err)
	}
	return client
}
