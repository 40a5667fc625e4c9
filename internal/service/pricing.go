package service

import (
	"math"
	"time"

	"juicedash/internal/models"
)

// Tariff holds the delivery pricing constants.
type Tariff struct {
	BaseFee         float64
	PerKmFee        float64
	BasePrepMinutes float64
	PerKmMinutes    float64
	MaxDeliveryKm   float64
}

// DefaultTariff matches the production fee schedule.
var DefaultTariff = Tariff{
	BaseFee:         2000,
	PerKmFee:        2000,
	BasePrepMinutes: 30,
	PerKmMinutes:    10,
	MaxDeliveryKm:   20,
}

// DeliveryFee computes the delivery fee for a distance. Any fractional
// kilometre is charged as a full kilometre.
func (t Tariff) DeliveryFee(distanceKm float64) float64 {
	return t.BaseFee + t.PerKmFee*math.Ceil(distanceKm)
}

// EstimatedMinutes computes the estimated delivery duration in
// minutes. Unlike the fee, the per-km term is not rounded.
func (t Tariff) EstimatedMinutes(distanceKm float64) float64 {
	return t.BasePrepMinutes + t.PerKmMinutes*distanceKm
}

// EstimatedDeliveryTime computes the delivery timestamp for an order
// placed at now.
func (t Tariff) EstimatedDeliveryTime(now time.Time, distanceKm float64) time.Time {
	return now.Add(time.Duration(t.EstimatedMinutes(distanceKm) * float64(time.Minute)))
}

// Deliverable reports whether a resolved distance is within range.
func (t Tariff) Deliverable(distanceKm float64) bool {
	return distanceKm <= t.MaxDeliveryKm
}

var statusProgress = map[string]int{
	models.OrderStatusPending:        10,
	models.OrderStatusConfirmed:      25,
	models.OrderStatusPreparing:      50,
	models.OrderStatusOutForDelivery: 75,
	models.OrderStatusDelivered:      100,
	models.OrderStatusCancelled:      0,
}

var statusMessages = map[string]string{
	models.OrderStatusPending:        "Waiting for the outlet to confirm your order",
	models.OrderStatusConfirmed:      "Your order has been confirmed",
	models.OrderStatusPreparing:      "Your juices are being prepared",
	models.OrderStatusOutForDelivery: "Your rider is on the way",
	models.OrderStatusDelivered:      "Your order has been delivered",
	models.OrderStatusCancelled:      "Your order was cancelled",
}

// ProgressForStatus maps an order status to a fixed progress
// percentage. Unknown statuses map to 0.
func ProgressForStatus(status string) int {
	return statusProgress[status]
}

// MessageForStatus maps an order status to its human status message.
func MessageForStatus(status string) string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return "Order status unknown"
}

// TimeRemainingMinutes returns whole minutes until the estimated
// delivery time, clamped at zero. Returns nil for terminal statuses.
func TimeRemainingMinutes(status string, estimated, now time.Time) *int {
	if status == models.OrderStatusDelivered || status == models.OrderStatusCancelled {
		return nil
	}
	remaining := int(estimated.Sub(now).Minutes())
	if remaining < 0 {
		remaining = 0
	}
	return &remaining
}
