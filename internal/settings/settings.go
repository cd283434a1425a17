package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/text/language"

	"github.com/zombor/receipt-builder/internal/storage"
)

const (
	defaultLanguage = "en"
	defaultCurrency = "USD"
)

var (
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrUnsupportedCurrency = errors.New("unsupported currency")
)

// Language describes a selectable user interface language
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Languages is the table of selectable languages
var Languages = []Language{
	{Code: "en", Name: "English"},
	{Code: "th", Name: "ไทย"},
}

// Store holds the user preferences. Every change is persisted and then
// reported to the registered handlers, in registration order.
// It is not safe for concurrent use.
type Store struct {
	kv       storage.Store
	language string
	darkMode bool
	currency string

	languageHandlers []func(code string)
	darkModeHandlers []func(enabled bool)
	currencyHandlers []func(code string)
}

// New creates a Store from the persisted preferences
func New(kv storage.Store) *Store {
	s := &Store{
		kv:       kv,
		language: defaultLanguage,
		currency: defaultCurrency,
	}
	if v := s.read(storage.KeyLanguage); v != "" {
		s.language = v
	}
	s.darkMode = s.read(storage.KeyDarkMode) == "true"
	if v := s.read(storage.KeyCurrency); v != "" {
		s.currency = v
	}
	return s
}

// read returns the stored value or "" when it is missing or unreadable
func (s *Store) read(key string) string {
	v, _, err := s.kv.Get(key)
	if err != nil {
		slog.Error("Failed to read setting", "key", key, "error", err)
		return ""
	}
	return v
}

// OnLanguageChange registers h to run after the language changes
func (s *Store) OnLanguageChange(h func(code string)) {
	s.languageHandlers = append(s.languageHandlers, h)
}

// OnDarkModeChange registers h to run after dark mode is switched
func (s *Store) OnDarkModeChange(h func(enabled bool)) {
	s.darkModeHandlers = append(s.darkModeHandlers, h)
}

// OnCurrencyChange registers h to run after the currency changes
func (s *Store) OnCurrencyChange(h func(code string)) {
	s.currencyHandlers = append(s.currencyHandlers, h)
}

// Sync runs the language and dark mode handlers with the current values
func (s *Store) Sync() {
	for _, h := range s.languageHandlers {
		h(s.language)
	}
	for _, h := range s.darkModeHandlers {
		h(s.darkMode)
	}
}

func (s *Store) Language() string { return s.language }
func (s *Store) DarkMode() bool   { return s.darkMode }
func (s *Store) Currency() string { return s.currency }

// Changes lists preferences to change together. Nil fields are left alone.
type Changes struct {
	Language *string
	DarkMode *bool
	Currency *string
}

// Apply checks every supplied value before changing anything, then applies
// them in language, dark mode, currency order. An unsupported code leaves all
// preferences as they were.
func (s *Store) Apply(c Changes) error {
	if c.Language != nil {
		if _, err := languageCode(*c.Language); err != nil {
			return err
		}
	}
	if c.Currency != nil {
		if _, ok := findCurrency(*c.Currency); !ok {
			return fmt.Errorf("%w: %s", ErrUnsupportedCurrency, *c.Currency)
		}
	}

	if c.Language != nil {
		if err := s.SetLanguage(*c.Language); err != nil {
			return err
		}
	}
	if c.DarkMode != nil {
		if err := s.SetDarkMode(*c.DarkMode); err != nil {
			return err
		}
	}
	if c.Currency != nil {
		if err := s.SetCurrency(*c.Currency); err != nil {
			return err
		}
	}
	return nil
}

// SetLanguage switches to the configured language matching code. Regional
// variants such as "th-TH" select their base language.
func (s *Store) SetLanguage(code string) error {
	code, err := languageCode(code)
	if err != nil {
		return err
	}
	if code == s.language {
		return nil
	}

	if err := s.kv.Set(storage.KeyLanguage, code); err != nil {
		return fmt.Errorf("saving language: %w", err)
	}
	s.language = code
	for _, h := range s.languageHandlers {
		h(code)
	}
	return nil
}

// SetDarkMode switches dark mode on or off
func (s *Store) SetDarkMode(enabled bool) error {
	if enabled == s.darkMode {
		return nil
	}

	if err := s.kv.Set(storage.KeyDarkMode, strconv.FormatBool(enabled)); err != nil {
		return fmt.Errorf("saving dark mode: %w", err)
	}
	s.darkMode = enabled
	for _, h := range s.darkModeHandlers {
		h(enabled)
	}
	return nil
}

// ToggleDarkMode flips dark mode
func (s *Store) ToggleDarkMode() error {
	return s.SetDarkMode(!s.darkMode)
}

// SetCurrency switches to the currency with the given code
func (s *Store) SetCurrency(code string) error {
	if _, ok := findCurrency(code); !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedCurrency, code)
	}
	if code == s.currency {
		return nil
	}

	if err := s.kv.Set(storage.KeyCurrency, code); err != nil {
		return fmt.Errorf("saving currency: %w", err)
	}
	s.currency = code
	for _, h := range s.currencyHandlers {
		h(code)
	}
	return nil
}

// CurrencySymbol returns the symbol of the current currency, "$" if unknown
func (s *Store) CurrencySymbol() string {
	c, ok := findCurrency(s.currency)
	if !ok {
		return fallbackCurrency.Symbol
	}
	return c.Symbol
}

// FormatAmount renders amount in the current currency, e.g. "฿1250.50"
func (s *Store) FormatAmount(amount float64) string {
	c, ok := findCurrency(s.currency)
	if !ok {
		c = fallbackCurrency
	}
	return formatAmount(c, amount)
}

// languageCode reduces code to the base language and checks it is configured
func languageCode(code string) (string, error) {
	tag, err := language.Parse(code)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedLanguage, code)
	}
	base, _ := tag.Base()
	if !isLanguage(base.String()) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedLanguage, base.String())
	}
	return base.String(), nil
}

func isLanguage(code string) bool {
	for _, l := range Languages {
		if l.Code == code {
			return true
		}
	}
	return false
}
