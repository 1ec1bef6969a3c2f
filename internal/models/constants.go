package models

const (
	// DefaultFormSessionTTL время жизни черновика формы администратора
	DefaultFormSessionTTL = 12 * 60 * 60 // 12 часов в секундах

	// MaxDestinationImages ограничение редактора на число фотографий направления
	MaxDestinationImages = 6

	// MaxDestinationVideos ограничение редактора на число видео направления
	MaxDestinationVideos = 3

	// DefaultItineraryImage используется, когда у маршрута нет изображения
	DefaultItineraryImage = "🏔️"

	// WorkerQueueSize размер очереди воркера
	WorkerQueueSize = 128

	// DefaultRequestTimeout таймаут обработки HTTP-запроса в секундах
	DefaultRequestTimeout = 10
)
