// pkg/email/email.go
package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"time"
)

type EmailService struct {
	apiKey    string
	from      string
	templates *template.Template
}

type EmailData struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Html    string `json:"html"`
}

// Template data structures
type WelcomeEmailData struct {
	Name string
}

type OrderConfirmationData struct {
	OrderNumber string
	Total       float64
	Currency    string
}

type LicenseExpiryWarningData struct {
	Name       string
	PlanTitle  string
	DaysLeft   int
	ExpiryDate time.Time
}

type PasswordChangedData struct {
	Email string
}

type CatalogStatsData struct {
	Period         string
	OrderCount     int64
	Revenue        float64
	DownloadCount  int64
	NewUserCount   int64
	TopPlanTitle   string
	TopPlanRevenue float64
	StartDate      time.Time
}

func NewEmailService(apiKey string) (*EmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend API key is required")
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("error loading email templates: %v", err)
	}

	return &EmailService{
		apiKey:    apiKey,
		from:      "PlanForge <noreply@planforge.io>",
		templates: templates,
	}, nil
}

func (s *EmailService) sendTemplateEmail(to, subject, templateName string, data interface{}) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return fmt.Errorf("template execution error: %v", err)
	}

	emailData := EmailData{
		From:    s.from,
		To:      to,
		Subject: subject,
		Html:    body.String(),
	}

	jsonData, err := json.Marshal(emailData)
	if err != nil {
		return fmt.Errorf("error marshaling email data: %v", err)
	}

	req, err := http.NewRequest("POST", "https://api.resend.com/emails", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %v", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("error sending email: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %v", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("resend API error: %s", string(respBody))
	}

	log.Printf("Sent %q email to %s", subject, to)
	return nil
}

// Email sending methods
func (s *EmailService) SendWelcomeEmail(email, name string) error {
	data := WelcomeEmailData{
		Name: name,
	}
	return s.sendTemplateEmail(email, "Welcome to PlanForge!", "welcome.html", data)
}

func (s *EmailService) SendOrderConfirmationEmail(email, orderNumber string, total float64, currency string) error {
	data := OrderConfirmationData{
		OrderNumber: orderNumber,
		Total:       total,
		Currency:    currency,
	}
	return s.sendTemplateEmail(email, "Your PlanForge order is confirmed", "order_confirmation.html", data)
}

func (s *EmailService) SendLicenseExpiryWarning(email, name, planTitle string, expiryDate time.Time, daysLeft int) error {
	data := LicenseExpiryWarningData{
		Name:       name,
		PlanTitle:  planTitle,
		DaysLeft:   daysLeft,
		ExpiryDate: expiryDate,
	}
	return s.sendTemplateEmail(email, "Your plan license is about to expire", "license_expiry_warning.html", data)
}

func (s *EmailService) SendPasswordChangedEmail(email string) error {
	data := PasswordChangedData{
		Email: email,
	}
	return s.sendTemplateEmail(email, "Your PlanForge password was changed", "password_changed.html", data)
}

func (s *EmailService) SendCatalogStatsEmail(email string, data CatalogStatsData) error {
	subject := fmt.Sprintf("PlanForge %s report", data.Period)
	return s.sendTemplateEmail(email, subject, "catalog_stats.html", data)
}
