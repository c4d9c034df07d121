// Package promptpay собирает EMVCo merchant-presented пейлоад для тайской системы PromptPay.
// Пейлоад - это TLV строка (тег, длина, значение) с контрольной суммой CRC-16/CCITT-FALSE,
// которую мобильный банк считывает из QR кода.
package promptpay

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	idPayloadFormat      = "00"
	idMethod             = "01"
	idMerchantInfo       = "29"
	idCurrency           = "53"
	idAmount             = "54"
	idCountry            = "58"
	idAdditionalData     = "62"
	idCRC                = "63"
	idMerchantAID        = "00"
	idMerchantPhone      = "01"
	idMerchantNationalID = "02"
	idMerchantEWallet    = "03"
	idReferenceLabel     = "05"

	payloadFormatEMV = "01"
	methodStatic     = "11"
	methodDynamic    = "12"
	promptPayAID     = "A000000677010111"
	currencyTHB      = "764"
	countryTH        = "TH"
)

var (
	ErrInvalidTarget    = errors.New("invalid promptpay target")
	ErrInvalidAmount    = errors.New("invalid promptpay amount")
	ErrReferenceTooLong = errors.New("reference label too long")
)

// максимальная длина значения одного TLV поля (длина кодируется двумя цифрами).
const maxValueLength = 99

// Builder строит пейлоады для одного получателя (номер телефона, ИНН или e-wallet id).
type Builder struct {
	target string
}

// NewBuilder валидирует идентификатор получателя и возвращает генератор пейлоадов.
// Допустимы номер телефона (10 цифр), national id (13 цифр) и e-wallet id (15 цифр).
// Разделители в номере телефона (пробелы, дефисы, плюс) игнорируются.
func NewBuilder(target string) (*Builder, error) {
	digits := onlyDigits(target)
	switch len(digits) {
	case 10, 13, 15:
		return &Builder{target: digits}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidTarget, target)
	}
}

// Payload собирает динамический пейлоад на сумму amount (THB) с референсом reference.
// Референс (метка для сверки платежа с транзакцией) может быть пустым, тогда поле 62
// не добавляется. Сумма должна быть строго положительной.
func (b *Builder) Payload(amount decimal.Decimal, reference string) (string, error) {
	if !amount.IsPositive() {
		return "", fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	formattedAmount := amount.StringFixed(2)
	if len(formattedAmount) > maxValueLength {
		return "", fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	if len(reference) > maxValueLength-4 {
		return "", fmt.Errorf("%w: %q", ErrReferenceTooLong, reference)
	}

	var sb strings.Builder
	writeTLV(&sb, idPayloadFormat, payloadFormatEMV)
	writeTLV(&sb, idMethod, methodDynamic)
	writeTLV(&sb, idMerchantInfo, b.merchantInfo())
	writeTLV(&sb, idCurrency, currencyTHB)
	writeTLV(&sb, idAmount, formattedAmount)
	writeTLV(&sb, idCountry, countryTH)
	if reference != "" {
		var ref strings.Builder
		writeTLV(&ref, idReferenceLabel, reference)
		writeTLV(&sb, idAdditionalData, ref.String())
	}

	sb.WriteString(idCRC + "04")
	return sb.String() + checksum(sb.String()), nil
}

// StaticPayload собирает статический пейлоад без суммы: плательщик вводит сумму сам.
func (b *Builder) StaticPayload() string {
	var sb strings.Builder
	writeTLV(&sb, idPayloadFormat, payloadFormatEMV)
	writeTLV(&sb, idMethod, methodStatic)
	writeTLV(&sb, idMerchantInfo, b.merchantInfo())
	writeTLV(&sb, idCurrency, currencyTHB)
	writeTLV(&sb, idCountry, countryTH)

	sb.WriteString(idCRC + "04")
	return sb.String() + checksum(sb.String())
}

// merchantInfo формирует поле 29: AID PromptPay плюс идентификатор получателя.
// Тип идентификатора определяется по количеству цифр.
func (b *Builder) merchantInfo() string {
	var sb strings.Builder
	writeTLV(&sb, idMerchantAID, promptPayAID)
	switch len(b.target) {
	case 15:
		writeTLV(&sb, idMerchantEWallet, b.target)
	case 13:
		writeTLV(&sb, idMerchantNationalID, b.target)
	default:
		writeTLV(&sb, idMerchantPhone, formatPhone(b.target))
	}
	return sb.String()
}

func writeTLV(sb *strings.Builder, tag, value string) {
	fmt.Fprintf(sb, "%s%02d%s", tag, len(value), value)
}

// formatPhone приводит местный номер 08xxxxxxxx к формату 0066 8xxxxxxxx: код страны
// вместо ведущего нуля, с паддингом нулями до 13 символов.
func formatPhone(phone string) string {
	converted := phone
	if strings.HasPrefix(converted, "0") {
		converted = "66" + converted[1:]
	}
	for len(converted) < 13 {
		converted = "0" + converted
	}
	return converted
}

func onlyDigits(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// checksum считает CRC-16/CCITT-FALSE (полином 0x1021, init 0xFFFF) и возвращает
// 4 hex символа в верхнем регистре. Алгоритм зафиксирован стандартом EMVCo.
func checksum(payload string) string {
	var crc uint16 = 0xFFFF
	for _, b := range []byte(payload) {
		crc ^= uint16(b) << 8
		for range 8 {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return fmt.Sprintf("%04X", crc)
}
