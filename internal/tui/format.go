package tui

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// moneyFormatter renders amounts with the locale's grouping and decimal
// separators.
type moneyFormatter struct {
	printer *message.Printer
}

func newMoneyFormatter(locale string) moneyFormatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Indonesian
	}
	return moneyFormatter{printer: message.NewPrinter(tag)}
}

func (f moneyFormatter) Format(v float64) string {
	return f.printer.Sprintf("%.2f", v)
}

func (f moneyFormatter) Int(v int) string {
	return f.printer.Sprintf("%d", v)
}
