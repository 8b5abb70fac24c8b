package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRiskFromRedactions(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		types    []TokenType
		expected RiskLevel
	}{
		{"no redactions", 0, nil, RiskNone},
		{"one redaction", 1, []TokenType{TokenTypePhone}, RiskLow},
		{"two redactions", 2, []TokenType{TokenTypePhone, TokenTypeEmail}, RiskLow},
		{"three redactions", 3, []TokenType{TokenTypePhone}, RiskMedium},
		{"five redactions", 5, []TokenType{TokenTypeEmail}, RiskMedium},
		{"six redactions", 6, []TokenType{TokenTypeEmail}, RiskHigh},
		{"ten redactions", 10, []TokenType{TokenTypeEmail}, RiskCritical},
		{"credit card escalates low to medium", 1, []TokenType{TokenTypeCreditCard}, RiskMedium},
		{"bank account escalates low to medium", 1, []TokenType{TokenTypeBankAccount}, RiskMedium},
		{"iban escalates medium to high", 3, []TokenType{TokenTypeIBAN}, RiskHigh},
		{"escalation capped at critical", 10, []TokenType{TokenTypeIBAN}, RiskCritical},
		{"zero count stays none even with financial type", 0, []TokenType{TokenTypeIBAN}, RiskNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RiskFromRedactions(tt.count, tt.types))
		})
	}
}

func TestRiskLevel_AtLeast(t *testing.T) {
	assert.True(t, RiskMedium.AtLeast(RiskLow))
	assert.True(t, RiskMedium.AtLeast(RiskMedium))
	assert.False(t, RiskMedium.AtLeast(RiskHigh))
	assert.True(t, RiskCritical.AtLeast(RiskNone))
}

func TestTokenType_Token(t *testing.T) {
	assert.Equal(t, "[PHONE_1]", TokenTypePhone.Token(1))
	assert.Equal(t, "[CREDIT_CARD_12]", TokenTypeCreditCard.Token(12))
}

func TestTokenType_IsFinancial(t *testing.T) {
	assert.True(t, TokenTypeCreditCard.IsFinancial())
	assert.True(t, TokenTypeBankAccount.IsFinancial())
	assert.True(t, TokenTypeIBAN.IsFinancial())
	assert.False(t, TokenTypePhone.IsFinancial())
	assert.False(t, TokenTypeEmail.IsFinancial())
}
