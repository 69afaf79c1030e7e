package mailer

// Config holds the email transport configuration.
// Postmark tokens are optional to support development environments where
// outbound email is replaced by the DevSender; the sender identity is
// required because every outbound email carries it.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL,required"`
	ReplyToEmail         string `env:"REPLY_TO_EMAIL,required"`
}

// Identity is the restaurant identity rendered into every template.
type Identity struct {
	Name    string `env:"RESTAURANT_NAME" envDefault:"Resto Pecheur"`
	Phone   string `env:"RESTAURANT_PHONE" envDefault:"0661-460593"`
	Address string `env:"RESTAURANT_ADDRESS" envDefault:"Route De Tafraout Quartier Industriel, Tiznit 85000 Maroc"`
	Website string `env:"RESTAURANT_WEBSITE" envDefault:"www.restopecheur.ma"`
}
