package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

func init() {
	// Load env from .env; real env always wins.
	godotenv.Load()
}

func envString(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envBool(key string, fallback bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return fallback
	}
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// ==================== Folders ====================

func BaseDir() string {
	return envString("BOLETOS_BASE_DIR", ".")
}

func SlipsInboxDir() string   { return filepath.Join(BaseDir(), "BoletosEntrada") }
func RenamedSlipsDir() string { return filepath.Join(BaseDir(), "BoletosRenomeados") }
func InvoiceNotesDir() string { return filepath.Join(BaseDir(), "Notas") }
func AuditDir() string        { return filepath.Join(BaseDir(), "Auditoria") }
func ErrorsDir() string       { return filepath.Join(BaseDir(), "Erros") }
func SentSlipsDir() string    { return filepath.Join(BaseDir(), "BoletosEnviados") }

func EnsureDirs() error {
	for _, dir := range []string{
		SlipsInboxDir(), RenamedSlipsDir(), InvoiceNotesDir(),
		AuditDir(), ErrorsDir(), SentSlipsDir(),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// ==================== Engine settings ====================

// PreviewMode keeps dispatch side effects local: packets are rendered for
// review and slips are not moved to the sent folder.
func PreviewMode() bool {
	return envBool("PREVIEW_MODE", true)
}

// AmountToleranceCents is the max |slip - invoice| delta accepted by the
// amount validation layer. Zero means exact match.
func AmountToleranceCents() int64 {
	return int64(envInt("AMOUNT_TOLERANCE_CENTS", 0))
}

// AttachmentToleranceCents is the amount tolerance used when cross-checking
// a supporting document against its group. Mismatches beyond it only warn.
func AttachmentToleranceCents() int64 {
	return int64(envInt("ATTACHMENT_TOLERANCE_CENTS", 10))
}

// NameStrongThreshold marks a payer-name similarity as a strong match.
func NameStrongThreshold() float64 {
	return envFloat("NAME_STRONG_THRESHOLD", 0.85)
}

// NameWeakThreshold is the lower similarity band still worth partial score
// during total-amount matching.
func NameWeakThreshold() float64 {
	return envFloat("NAME_WEAK_THRESHOLD", 0.70)
}

// NameLayerBlocks controls whether a weak payer-name similarity rejects a
// slip. Off by default: OCR noise in payer names would reject too many
// otherwise-consistent slips. Flipping it is a config change, not a code
// change.
func NameLayerBlocks() bool {
	return envBool("NAME_LAYER_BLOCKS", false)
}

// ScoreAcceptThreshold is the minimum total-amount-tier score for a match.
func ScoreAcceptThreshold() int {
	return envInt("SCORE_ACCEPT_THRESHOLD", 70)
}

// MaxRecipientEmails caps how many validated emails are kept per invoice.
func MaxRecipientEmails() int {
	return envInt("MAX_RECIPIENT_EMAILS", 2)
}

// DuplicateInvoicePolicy selects how the invoice index treats duplicate
// invoice numbers: "last-wins" (default), "first-wins" or
// "reject-duplicate".
func DuplicateInvoicePolicy() string {
	return envString("DUPLICATE_INVOICE_POLICY", "last-wins")
}
