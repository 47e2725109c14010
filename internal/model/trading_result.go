package model

import "time"

// TradingResult is one row of the exchange trading results table: a single
// (product, delivery terms, trading date) observation. Rows are written by
// the ingester and never mutated afterwards.
type TradingResult struct {
	ID                  int64     `gorm:"column:pk_spimex_id;primaryKey;autoIncrement" json:"pk_spimex_id"`
	ExchangeProductID   string    `gorm:"column:exchange_product_id;not null" json:"exchange_product_id"`
	ExchangeProductName *string   `gorm:"column:exchange_product_name" json:"exchange_product_name"`
	OilID               *string   `gorm:"column:oil_id" json:"oil_id"`
	DeliveryBasisID     *string   `gorm:"column:delivery_basis_id" json:"delivery_basis_id"`
	DeliveryBasisName   *string   `gorm:"column:delivery_basis_name" json:"delivery_basis_name"`
	DeliveryTypeID      *string   `gorm:"column:delivery_type_id" json:"delivery_type_id"`
	Volume              *float64  `gorm:"column:volume" json:"volume"`
	Total               *float64  `gorm:"column:total" json:"total"`
	Count               *int64    `gorm:"column:count" json:"count"`
	Date                time.Time `gorm:"column:date;not null" json:"date"`
	CreatedOn           time.Time `gorm:"column:created_on;autoCreateTime" json:"created_on"`
	UpdatedOn           time.Time `gorm:"column:updated_on;autoUpdateTime" json:"updated_on"`
}

func (TradingResult) TableName() string {
	return "spimex_trading_results"
}
