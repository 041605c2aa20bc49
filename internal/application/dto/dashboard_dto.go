package dto

// DashboardCountsDTO respuesta de GET /api/dashboard.
// SalesToday cuenta ventas del día calendario actual en Timezone.
type DashboardCountsDTO struct {
	TotalProducts   int    `json:"total_products"`
	ProductsInStock int    `json:"products_in_stock"`
	TotalClients    int    `json:"total_clients"`
	SalesToday      int    `json:"sales_today"`
	Timezone        string `json:"timezone"`
}
