package api

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"aromi/utils"
)

// translationKeys are the message IDs exposed to client-side scripts
var translationKeys = []string{
	"app_title",
	"theme_label_light",
	"theme_label_dark",
	"error_invalid_credentials",
	"error_network",
	"error_404",
	"error_500",
	"chat_placeholder",
	"chat_thinking",
}

// I18nHandler serves translation maps for the pages
type I18nHandler struct {
	cache *utils.MemoryCache
}

// NewI18nHandler creates a new i18n handler
func NewI18nHandler() *I18nHandler {
	return &I18nHandler{cache: utils.NewMemoryCache()}
}

// GetTranslations returns the translation map for a language
func (h *I18nHandler) GetTranslations(c *fiber.Ctx) error {
	lang := c.Params("lang")
	if lang != "en" && lang != "ja" {
		lang = "en"
	}

	if cached, ok := h.cache.Get(lang); ok {
		return c.JSON(cached)
	}

	localizer := utils.GetLocalizer(lang)
	translations := make(map[string]string, len(translationKeys))
	for _, key := range translationKeys {
		translations[key] = utils.T(localizer, key)
	}

	h.cache.Set(lang, translations, time.Hour)

	return c.JSON(translations)
}
