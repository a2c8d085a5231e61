package payment

import "github.com/sheikh-saqib/card-payments-api/internal/models"

// CheckAdmissible decides whether tx may be stored as a new payment.
// Identities and the authorization code, NSU and status are only ever assigned by this
// service, so a record arriving with any of them set has already been processed (or was
// forged) and is rejected. No other field is looked at here.
func CheckAdmissible(tx models.Transaction) error {
	var fields []string

	if tx.ID != nil {
		fields = append(fields, "id")
	}
	if tx.Description.ID != nil {
		fields = append(fields, "description.id")
	}
	if tx.PaymentMethod.ID != nil {
		fields = append(fields, "payment_method.id")
	}
	if tx.Description.AuthorizationCode != "" {
		fields = append(fields, "description.authorization_code")
	}
	if tx.Description.NSU != "" {
		fields = append(fields, "description.nsu")
	}
	if tx.Description.Status != "" {
		fields = append(fields, "description.status")
	}

	if len(fields) > 0 {
		return &AdmissionError{Fields: fields}
	}
	return nil
}
