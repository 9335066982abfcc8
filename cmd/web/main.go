// Бэкенд пожертвований: публичные payment-intent и webhook эндпоинты
// и админ API под /admin-api с авторизацией по сессии.

package main

import "donation_backend/internal/app"

func main() {
	app.Run()
}
