package models

import (
	"time"

	"github.com/lib/pq"
)

// Product represents a juice in the catalog. Ingredient and benefit
// columns are Postgres text[] and scan through pq.StringArray.
type Product struct {
	ID             string         `db:"id" json:"id"`
	Name           string         `db:"name" json:"name"`
	Description    string         `db:"description" json:"description,omitempty"`
	PricePerLitre  float64        `db:"price_per_litre" json:"price_per_litre"`
	Ingredients    pq.StringArray `db:"ingredients" json:"ingredients"`
	HealthBenefits pq.StringArray `db:"health_benefits" json:"health_benefits"`
	Allergens      pq.StringArray `db:"allergens" json:"allergens"`
	ImageURL       string         `db:"image_url" json:"image_url,omitempty"`
	IsAvailable    bool           `db:"is_available" json:"is_available"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}

// SymptomMapping associates a reported symptom with ingredients to
// recommend and ingredients to avoid.
type SymptomMapping struct {
	ID                     string         `db:"id" json:"id"`
	Symptom                string         `db:"symptom" json:"symptom"`
	RecommendedIngredients pq.StringArray `db:"recommended_ingredients" json:"recommended_ingredients"`
	AvoidIngredients       pq.StringArray `db:"avoid_ingredients" json:"avoid_ingredients"`
	Description            string         `db:"description" json:"description,omitempty"`
}

// Outlet is a fulfillment location orders are dispatched from.
type Outlet struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Address   string    `db:"address" json:"address"`
	Lat       float64   `db:"lat" json:"lat"`
	Lng       float64   `db:"lng" json:"lng"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// NearestOutlet is the result of nearest-outlet resolution for a
// delivery coordinate.
type NearestOutlet struct {
	OutletID   string  `db:"outlet_id" json:"outlet_id"`
	Name       string  `db:"name" json:"name"`
	Address    string  `db:"address" json:"address"`
	DistanceKm float64 `db:"distance_km" json:"distance_km"`
}

// Order statuses
const (
	OrderStatusPending        = "pending"
	OrderStatusConfirmed      = "confirmed"
	OrderStatusPreparing      = "preparing"
	OrderStatusOutForDelivery = "out_for_delivery"
	OrderStatusDelivered      = "delivered"
	OrderStatusCancelled      = "cancelled"
)

// Order is an assembled customer order. TotalAmount always equals the
// sum of item subtotals plus DeliveryFee, priced at creation time.
type Order struct {
	ID                    string    `db:"id" json:"id"`
	UserID                string    `db:"user_id" json:"user_id"`
	OutletID              string    `db:"outlet_id" json:"outlet_id"`
	Status                string    `db:"status" json:"status"`
	TotalAmount           float64   `db:"total_amount" json:"total_amount"`
	DeliveryFee           float64   `db:"delivery_fee" json:"delivery_fee"`
	DeliveryStreet        string    `db:"delivery_street" json:"delivery_street"`
	DeliveryCity          string    `db:"delivery_city" json:"delivery_city"`
	DeliveryDistrict      string    `db:"delivery_district" json:"delivery_district"`
	DeliveryLat           float64   `db:"delivery_lat" json:"delivery_lat"`
	DeliveryLng           float64   `db:"delivery_lng" json:"delivery_lng"`
	PaymentMethod         string    `db:"payment_method" json:"payment_method"`
	Notes                 string    `db:"notes" json:"notes,omitempty"`
	RiderName             string    `db:"rider_name" json:"rider_name,omitempty"`
	RiderPhone            string    `db:"rider_phone" json:"rider_phone,omitempty"`
	RiderPlate            string    `db:"rider_plate" json:"rider_plate,omitempty"`
	EstimatedDeliveryTime time.Time `db:"estimated_delivery_time" json:"estimated_delivery_time"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time `db:"updated_at" json:"updated_at"`
}

// OrderItem is one product/quantity line within an order. UnitPrice is
// a snapshot of the product price at order time.
type OrderItem struct {
	ID             string  `db:"id" json:"id"`
	OrderID        string  `db:"order_id" json:"order_id"`
	ProductID      string  `db:"product_id" json:"product_id"`
	QuantityLitres float64 `db:"quantity_litres" json:"quantity_litres"`
	UnitPrice      float64 `db:"unit_price" json:"unit_price"`
	Subtotal       float64 `db:"subtotal" json:"subtotal"`
}

// OrderItemDetail is an order item joined with its product row for
// enriched responses.
type OrderItemDetail struct {
	OrderItem
	ProductName  string `db:"product_name" json:"product_name"`
	ProductImage string `db:"product_image" json:"product_image,omitempty"`
}

// OrderDetails is the fully joined order returned after creation and
// on order reads.
type OrderDetails struct {
	Order  Order             `json:"order"`
	Items  []OrderItemDetail `json:"items"`
	Outlet *Outlet           `json:"outlet,omitempty"`
}

// Rider is the demo rider record assigned at order creation.
type Rider struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Plate string `json:"plate"`
}

// Recommendation is one scored product in a recommendation response.
type Recommendation struct {
	Product               Product  `json:"product"`
	RecommendationScore   int      `json:"recommendation_score"`
	MatchedIngredients    []string `json:"matched_ingredients"`
	HasAvoidedIngredients bool     `json:"has_avoided_ingredients"`
	Reasons               []string `json:"reasons"`
}

// RecommendationReport is the recommendation response data.
// SymptomMappingsFound is only present on the scored path.
type RecommendationReport struct {
	Recommendations       []Recommendation `json:"recommendations"`
	SymptomsAnalyzed      []string         `json:"symptoms_analyzed"`
	AllergiesConsidered   []string         `json:"allergies_considered"`
	TotalProductsAnalyzed int              `json:"total_products_analyzed"`
	SymptomMappingsFound  *int             `json:"symptom_mappings_found,omitempty"`
	Message               string           `json:"-"`
}

// DeliveryQuote is the delivery-fee/availability answer for a
// coordinate.
type DeliveryQuote struct {
	NearestOutlet            *NearestOutlet `json:"nearest_outlet"`
	DeliveryFee              float64        `json:"delivery_fee"`
	EstimatedDeliveryMinutes float64        `json:"estimated_delivery_minutes"`
	DeliveryAvailable        bool           `json:"delivery_available"`
	Message                  string         `json:"message,omitempty"`
}

// OrderTracking is the derived tracking view of an order.
// TimeRemainingMinutes is omitted for delivered and cancelled orders.
type OrderTracking struct {
	OrderID               string    `json:"order_id"`
	Status                string    `json:"status"`
	ProgressPercent       int       `json:"progress_percent"`
	StatusMessage         string    `json:"status_message"`
	EstimatedDeliveryTime time.Time `json:"estimated_delivery_time"`
	TimeRemainingMinutes  *int      `json:"time_remaining_minutes,omitempty"`
	Rider                 *Rider    `json:"rider,omitempty"`
}
