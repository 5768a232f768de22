package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/reliefnet/disaster-api/pkg/models"
)

// legacyDocument is the flat db.json layout written by the first version of
// the application. Emergencies there use "user" and "timestamp", and account
// records carry their bcrypt hash under "password".
type legacyDocument struct {
	Emergencies []legacyEmergency `json:"emergencies,omitempty"`
	Users       []legacyAccount   `json:"users"`
	Admins      []legacyAccount   `json:"admins"`
	Volunteers  []legacyAccount   `json:"volunteers"`
	Agencies    []legacyAccount   `json:"agencies"`
}

type legacyEmergency struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	User        string   `json:"user"`
	Status      string   `json:"status"`
	Volunteers  []string `json:"volunteers"`
	Timestamp   string   `json:"timestamp"`
}

type legacyAccount struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Address     string `json:"address,omitempty"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Country     string `json:"country,omitempty"`
	City        string `json:"city,omitempty"`
	PinCode     string `json:"pinCode,omitempty"`
}

// LoadLegacyFile parses a db.json file into a Document. Collections missing
// from the file stay nil so an import leaves them untouched.
func LoadLegacyFile(path string) (models.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	return DecodeLegacy(data)
}

// DecodeLegacy parses the legacy JSON layout
func DecodeLegacy(data []byte) (models.Document, error) {
	var raw legacyDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.Document{}, fmt.Errorf("decode legacy document: %w", err)
	}

	var doc models.Document
	if raw.Emergencies != nil {
		doc.Emergencies = make([]models.Emergency, 0, len(raw.Emergencies))
		for _, le := range raw.Emergencies {
			created, _ := time.Parse(time.RFC3339Nano, le.Timestamp)
			e := models.Emergency{
				ID:          le.ID,
				Title:       le.Title,
				Description: le.Description,
				Reporter:    le.User,
				Volunteers:  dedupe(le.Volunteers),
				CreatedAt:   created,
			}
			e.Normalize()
			doc.Emergencies = append(doc.Emergencies, e)
		}
	}

	for _, role := range models.Roles {
		var src []legacyAccount
		switch role {
		case models.RoleUser:
			src = raw.Users
		case models.RoleAdmin:
			src = raw.Admins
		case models.RoleVolunteer:
			src = raw.Volunteers
		case models.RoleAgency:
			src = raw.Agencies
		}
		if src == nil {
			continue
		}
		accounts := make([]models.Account, 0, len(src))
		for _, la := range src {
			accounts = append(accounts, models.Account{
				ID:           la.ID,
				Role:         role,
				Name:         la.Name,
				Email:        la.Email,
				PhoneNumber:  la.PhoneNumber,
				Address:      la.Address,
				Country:      la.Country,
				City:         la.City,
				PinCode:      la.PinCode,
				PasswordHash: la.Password,
			})
		}
		doc.SetAccounts(role, accounts)
	}
	return doc, nil
}

// EncodeLegacy renders doc in the legacy db.json layout, password hashes included
func EncodeLegacy(doc models.Document) ([]byte, error) {
	raw := legacyDocument{
		Emergencies: make([]legacyEmergency, 0, len(doc.Emergencies)),
	}
	for _, e := range doc.Emergencies {
		e.Normalize()
		raw.Emergencies = append(raw.Emergencies, legacyEmergency{
			ID:          e.ID,
			Title:       e.Title,
			Description: e.Description,
			User:        e.Reporter,
			Status:      string(e.Status),
			Volunteers:  e.Volunteers,
			Timestamp:   e.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	raw.Users = toLegacyAccounts(doc.Users)
	raw.Admins = toLegacyAccounts(doc.Admins)
	raw.Volunteers = toLegacyAccounts(doc.Volunteers)
	raw.Agencies = toLegacyAccounts(doc.Agencies)
	return json.MarshalIndent(raw, "", "  ")
}

// WriteLegacyFile writes doc to path atomically through a temp file and rename
func WriteLegacyFile(path string, doc models.Document) error {
	data, err := EncodeLegacy(doc)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".db-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func toLegacyAccounts(accounts []models.Account) []legacyAccount {
	out := make([]legacyAccount, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, legacyAccount{
			ID:          a.ID,
			Name:        a.Name,
			PhoneNumber: a.PhoneNumber,
			Address:     a.Address,
			Email:       a.Email,
			Password:    a.PasswordHash,
			Country:     a.Country,
			City:        a.City,
			PinCode:     a.PinCode,
		})
	}
	return out
}

func dedupe(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
