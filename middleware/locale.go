package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"aromi/utils"
)

var supportedLanguages = map[string]bool{"en": true, "ja": true}

// LocaleMiddleware detects the visitor's language and stores a
// localizer in the request context. Precedence: query parameter,
// cookie, Accept-Language header, English.
func LocaleMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		lang := c.Query("lang")
		if lang == "" {
			lang = c.Cookies("lang")
		}
		if lang == "" && strings.HasPrefix(c.Get("Accept-Language"), "ja") {
			lang = "ja"
		}
		if !supportedLanguages[lang] {
			lang = "en"
		}

		c.Locals("localizer", utils.GetLocalizer(lang))
		c.Locals("lang", lang)

		return c.Next()
	}
}
