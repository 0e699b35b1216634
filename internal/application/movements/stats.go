package movements

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-console/internal/domain/entity"
)

// DayBucket acumulado de entradas/salidas de un día calendario (hora local).
type DayBucket struct {
	Date        time.Time // medianoche local del día
	InQuantity  int
	OutQuantity int
}

// DerivedStatistics resumen derivado de la página de registros cargada.
// Es un artefacto de vista: se recalcula desde cero en cada cambio del set
// de registros y nunca se persiste. Su alcance es explícitamente la página
// actual, no el conjunto filtrado completo (limitación documentada).
type DerivedStatistics struct {
	TotalCount int
	InCount    int
	OutCount   int

	InQuantity  int
	OutQuantity int
	NetBalance  int // entradas − salidas

	InValue  decimal.Decimal // Σ cantidad × precio unitario de entradas
	OutValue decimal.Decimal

	LargestIn  *entity.Movement // mayor entrada individual (nil si no hay)
	LargestOut *entity.Movement

	Days []DayBucket // últimos N días en orden ascendente, incluye hoy
}

// Derive recorre una sola vez los registros y acumula conteos, sumas,
// extremos y buckets por día calendario para los windowDays días más
// recientes (terminando en now). Función pura.
func Derive(records []entity.Movement, now time.Time, windowDays int) DerivedStatistics {
	st := DerivedStatistics{
		InValue:  decimal.Zero,
		OutValue: decimal.Zero,
	}

	if windowDays <= 0 {
		windowDays = 7
	}
	today := startOfDay(now)
	windowStart := today.AddDate(0, 0, -(windowDays - 1))

	buckets := make(map[string]*DayBucket, windowDays)
	st.Days = make([]DayBucket, 0, windowDays)
	for i := 0; i < windowDays; i++ {
		day := windowStart.AddDate(0, 0, i)
		st.Days = append(st.Days, DayBucket{Date: day})
	}
	for i := range st.Days {
		buckets[st.Days[i].Date.Format("2006-01-02")] = &st.Days[i]
	}

	for i := range records {
		m := records[i]
		st.TotalCount++
		switch m.Type {
		case entity.MovementTypeIn:
			st.InCount++
			st.InQuantity += m.Quantity
			st.InValue = st.InValue.Add(m.Value())
			if st.LargestIn == nil || m.Quantity > st.LargestIn.Quantity {
				st.LargestIn = &records[i]
			}
		case entity.MovementTypeOut:
			st.OutCount++
			st.OutQuantity += m.Quantity
			st.OutValue = st.OutValue.Add(m.Value())
			if st.LargestOut == nil || m.Quantity > st.LargestOut.Quantity {
				st.LargestOut = &records[i]
			}
		}

		day := m.CreatedAt.In(now.Location())
		if b, ok := buckets[day.Format("2006-01-02")]; ok {
			switch m.Type {
			case entity.MovementTypeIn:
				b.InQuantity += m.Quantity
			case entity.MovementTypeOut:
				b.OutQuantity += m.Quantity
			}
		}
	}

	st.NetBalance = st.InQuantity - st.OutQuantity
	return st
}
