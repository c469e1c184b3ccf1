package models

// DriverStats is the aggregated earnings view for a driver. All amounts are
// integer minor currency units.
type DriverStats struct {
	TotalStats  TotalStats  `json:"total_stats"`
	PeriodStats PeriodStats `json:"period_stats"`
	RecentRides []Ride      `json:"recent_rides"`
}

// TotalStats is the all-time earnings summary.
type TotalStats struct {
	TotalRides          int   `json:"total_rides"`
	TotalGrossEarnings  int64 `json:"total_gross_earnings"`
	PlatformFee         int64 `json:"platform_fee"`
	TotalNetEarnings    int64 `json:"total_net_earnings"`
	AvailableToWithdraw int64 `json:"available_to_withdraw"`
}

// PeriodStats groups earnings by preset windows.
type PeriodStats struct {
	Today PeriodEntry `json:"today"`
	Week  PeriodEntry `json:"week"`
	Month PeriodEntry `json:"month"`
}

// PeriodEntry is the ride count and earnings for one window.
type PeriodEntry struct {
	Rides    int   `json:"rides"`
	Earnings int64 `json:"earnings"`
}
