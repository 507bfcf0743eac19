package service

import (
	"time"

	"github.com/carenation/backend/internal/config"

	"github.com/mojocn/base64Captcha"
)

// CaptchaService image captcha for the admin login form
type CaptchaService struct {
	cfg    *config.Config
	driver base64Captcha.Driver
	store  base64Captcha.Store
}

// NewCaptchaService creates the captcha service
func NewCaptchaService(cfg *config.Config) *CaptchaService {
	image := cfg.Captcha.Image
	length := image.Length
	if length <= 0 {
		length = 4
	}
	width := image.Width
	if width <= 0 {
		width = 240
	}
	height := image.Height
	if height <= 0 {
		height = 80
	}
	maxSkew := 0.7
	expire := time.Duration(image.ExpireSeconds) * time.Second
	if expire <= 0 {
		expire = 5 * time.Minute
	}
	maxStore := image.MaxStore
	if maxStore <= 0 {
		maxStore = 10240
	}

	return &CaptchaService{
		cfg:    cfg,
		driver: base64Captcha.NewDriverDigit(height, width, length, maxSkew, image.NoiseCount),
		store:  base64Captcha.NewMemoryStore(maxStore, expire),
	}
}

// Enabled reports whether the login form requires a captcha
func (s *CaptchaService) Enabled() bool {
	return s.cfg.Captcha.Enabled
}

// Generate creates a captcha and returns its id plus the base64 PNG
func (s *CaptchaService) Generate() (string, string, error) {
	captcha := base64Captcha.NewCaptcha(s.driver, s.store)
	id, b64, _, err := captcha.Generate()
	if err != nil {
		return "", "", err
	}
	return id, b64, nil
}

// Verify checks an answer and consumes the captcha either way
func (s *CaptchaService) Verify(id, answer string) bool {
	if id == "" || answer == "" {
		return false
	}
	return s.store.Verify(id, answer, true)
}
