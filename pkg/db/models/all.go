package models

// All lists every model in dependency order; tests feed it to AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Product{},
		&Variant{},
		&PaymentMethod{},
		&Order{},
		&OrderLine{},
		&OrderStatusHistory{},
		&ShipmentStatusHistory{},
		&ShipmentEvent{},
		&CartLine{},
		&Badge{},
		&BadgeAward{},
		&ShareEvent{},
	}
}
