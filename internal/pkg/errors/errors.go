package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок аутентификации (неверный токен, неверные учетные данные).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда у пользователя недостаточно прав для действия
	// (не создатель запускает викторину, неверный код доступа).
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния жизненного цикла
	// (например, отправка ответов в незапущенную викторину).
	ErrConflict = errors.New("resource state conflict")

	// ErrUpstream используется для ошибок внешних сервисов (генератор вопросов, БД).
	ErrUpstream = errors.New("upstream service failure")
)
