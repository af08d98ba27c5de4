package ports

type IEmailService interface {
	SendVerificationEmail(email, token string) error
}
