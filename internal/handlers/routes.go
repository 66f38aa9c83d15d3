package handlers

import "github.com/gin-gonic/gin"

// Handlers groups the API handlers mounted under /api/v1
type Handlers struct {
	Containers   *ContainerHandler
	Reservations *ReservationHandler
	Alerts       *AlertHandler
	Temperature  *TemperatureHandler
	Monitoring   *MonitoringHandler
	Rooms        RoomLister
}

// RegisterRoutes mounts the protected API routes. readings gets its own
// middleware so sensor ingestion can be rate limited separately.
func RegisterRoutes(api *gin.RouterGroup, h Handlers, readings ...gin.HandlerFunc) {
	containers := api.Group("/containers")
	{
		containers.POST("", h.Containers.RegisterContainer)
		containers.GET("", h.Containers.ListContainers)
		containers.GET("/:id", h.Containers.GetContainer)
		containers.POST("/:id/flag", h.Containers.FlagForPickup)
		containers.POST("/:id/cancel-flag", h.Containers.CancelFlag)
		containers.POST("/:id/confirm-pickup", h.Containers.ConfirmPickup)
		containers.DELETE("/:id", h.Containers.DeleteContainer)
	}

	reservations := api.Group("/reservations")
	{
		reservations.POST("", h.Reservations.CreateReservation)
		reservations.GET("", h.Reservations.ListReservations)
		reservations.GET("/occupancy", h.Reservations.SlotOccupancy)
		reservations.GET("/:id", h.Reservations.GetReservation)
		reservations.POST("/:id/confirm", h.Reservations.ConfirmReservation)
		reservations.POST("/:id/cancel", h.Reservations.CancelReservation)
		reservations.POST("/:id/complete", h.Reservations.CompleteReservation)
	}

	alerts := api.Group("/alerts")
	{
		alerts.GET("", h.Alerts.ListAlerts)
		alerts.GET("/unread-count", h.Alerts.UnreadCount)
		alerts.POST("/read-all", h.Alerts.MarkAllRead)
		alerts.POST("/:id/read", h.Alerts.MarkRead)
	}

	temperature := api.Group("/temperature")
	{
		temperature.POST("/readings", append(readings, h.Temperature.RecordReading)...)
		temperature.GET("/units", h.Temperature.ListUnits)
		temperature.GET("/units/:id/readings", h.Temperature.UnitHistory)
	}

	api.GET("/rooms", ListRooms(h.Rooms))
	api.GET("/monitoring/stats", h.Monitoring.GetStats)
}
