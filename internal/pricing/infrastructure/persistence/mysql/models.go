package mysql

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/lsmbench/internal/pricing/domain"
)

// RunRecordModel 定价运行记录数据库模型。
// 金额与参数类字段以 decimal 字符串落库，避免二进制浮点在
// 数据库侧的精度漂移；读回时再转为 float64 参与计算。
type RunRecordModel struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
	CaseName     string    `gorm:"column:case_name;type:varchar(64);index;not null"`
	Backend      string    `gorm:"column:backend;type:varchar(32);index;not null"`
	TimestampUTC time.Time `gorm:"column:timestamp_utc;index;not null"`

	Spot         string `gorm:"column:spot;type:decimal(32,18);not null"`
	Strike       string `gorm:"column:strike;type:decimal(32,18);not null"`
	Maturity     string `gorm:"column:maturity;type:decimal(32,18);not null"`
	RiskFreeRate string `gorm:"column:risk_free_rate;type:decimal(32,18);not null"`
	Volatility   string `gorm:"column:volatility;type:decimal(32,18);not null"`
	NumPaths     int    `gorm:"column:num_paths;not null"`
	NumSteps     int    `gorm:"column:num_steps;not null"`
	Seed         int64  `gorm:"column:seed;type:bigint;not null"`

	Price  string  `gorm:"column:price;type:decimal(32,18);not null"`
	TimeMS float64 `gorm:"column:time_ms;type:decimal(20,6);not null"`

	GoVersion string `gorm:"column:go_version;type:varchar(32)"`
	OS        string `gorm:"column:os;type:varchar(16)"`
	Arch      string `gorm:"column:arch;type:varchar(16)"`
	CPUCount  int    `gorm:"column:cpu_count"`
	GitCommit string `gorm:"column:git_commit;type:varchar(64)"`
}

func (RunRecordModel) TableName() string { return "lsm_run_records" }

// mapping helpers

func toRunRecordModel(rec *domain.RunRecord) *RunRecordModel {
	if rec == nil {
		return nil
	}
	return &RunRecordModel{
		CaseName:     rec.CaseName,
		Backend:      rec.Backend,
		TimestampUTC: rec.TimestampUTC,
		Spot:         decimal.NewFromFloat(rec.Inputs.S0).String(),
		Strike:       decimal.NewFromFloat(rec.Inputs.K).String(),
		Maturity:     decimal.NewFromFloat(rec.Inputs.T).String(),
		RiskFreeRate: decimal.NewFromFloat(rec.Inputs.R).String(),
		Volatility:   decimal.NewFromFloat(rec.Inputs.Sigma).String(),
		NumPaths:     rec.Inputs.NumPaths,
		NumSteps:     rec.Inputs.NumSteps,
		Seed:         rec.Inputs.Seed,
		Price:        decimal.NewFromFloat(rec.Outputs.Price).String(),
		TimeMS:       rec.Outputs.TimeMS,
		GoVersion:    rec.SystemInfo.GoVersion,
		OS:           rec.SystemInfo.OS,
		Arch:         rec.SystemInfo.Arch,
		CPUCount:     rec.SystemInfo.CPUCount,
		GitCommit:    rec.SystemInfo.GitCommit,
	}
}

func toRunRecord(m *RunRecordModel) *domain.RunRecord {
	if m == nil {
		return nil
	}
	spot, _ := decimal.NewFromString(m.Spot)
	strike, _ := decimal.NewFromString(m.Strike)
	maturity, _ := decimal.NewFromString(m.Maturity)
	rate, _ := decimal.NewFromString(m.RiskFreeRate)
	vol, _ := decimal.NewFromString(m.Volatility)
	price, _ := decimal.NewFromString(m.Price)

	return &domain.RunRecord{
		CaseName:     m.CaseName,
		Backend:      m.Backend,
		TimestampUTC: m.TimestampUTC,
		Inputs: domain.SimulationConfig{
			S0:       spot.InexactFloat64(),
			K:        strike.InexactFloat64(),
			T:        maturity.InexactFloat64(),
			R:        rate.InexactFloat64(),
			Sigma:    vol.InexactFloat64(),
			NumPaths: m.NumPaths,
			NumSteps: m.NumSteps,
			Seed:     m.Seed,
		},
		Outputs: domain.RunOutputs{
			Price:  price.InexactFloat64(),
			TimeMS: m.TimeMS,
		},
		SystemInfo: domain.SystemInfo{
			GoVersion: m.GoVersion,
			OS:        m.OS,
			Arch:      m.Arch,
			CPUCount:  m.CPUCount,
			GitCommit: m.GitCommit,
		},
	}
}
