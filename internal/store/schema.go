package store

import (
	"fmt"
	"time"

	"trading-journal-go/internal/models"

	"github.com/shopspring/decimal"
)

// dateLayout is the calendar date format of the fecha column.
const dateLayout = "2006-01-02"

// tradeRow is the external shape of a trade. Both backends share it.
//
//	id             -> ID
//	user_id        -> Owner
//	fecha          -> Date
//	hora           -> EntryTime
//	hora_salida    -> ExitTime
//	activo         -> Instrument
//	direccion      -> Direction
//	estrategia     -> Strategy
//	origen         -> Origin
//	precio_entrada -> EntryPrice
//	precio_salida  -> ExitPrice
//	stop_loss      -> StopLoss
//	take_profit    -> TakeProfit
//	lotaje         -> LotSize
//	comision       -> Commission
//	swap           -> Swap
//	resultado_bruto -> GrossResult
//	resultado_neto -> NetResult
//	rr_planeado    -> PlannedRR
//	emocion        -> Emotion
//	sesion         -> Session
type tradeRow struct {
	ID             string  `json:"id,omitempty" gorm:"column:id;primaryKey"`
	UserID         string  `json:"user_id" gorm:"column:user_id;index;not null"`
	Fecha          string  `json:"fecha" gorm:"column:fecha;index"`
	Hora           *string `json:"hora" gorm:"column:hora"`
	HoraSalida     *string `json:"hora_salida,omitempty" gorm:"column:hora_salida"`
	Activo         string  `json:"activo" gorm:"column:activo"`
	Direccion      string  `json:"direccion" gorm:"column:direccion"`
	Estrategia     string  `json:"estrategia" gorm:"column:estrategia"`
	Origen         string  `json:"origen" gorm:"column:origen"`
	PrecioEntrada  number  `json:"precio_entrada" gorm:"column:precio_entrada;type:text"`
	PrecioSalida   number  `json:"precio_salida" gorm:"column:precio_salida;type:text"`
	StopLoss       number  `json:"stop_loss" gorm:"column:stop_loss;type:text"`
	TakeProfit     number  `json:"take_profit" gorm:"column:take_profit;type:text"`
	Lotaje         number  `json:"lotaje" gorm:"column:lotaje;type:text"`
	Comision       number  `json:"comision" gorm:"column:comision;type:text"`
	Swap           number  `json:"swap" gorm:"column:swap;type:text"`
	ResultadoBruto number  `json:"resultado_bruto" gorm:"column:resultado_bruto;type:text"`
	ResultadoNeto  number  `json:"resultado_neto" gorm:"column:resultado_neto;type:text"`
	RRPlaneado     number  `json:"rr_planeado" gorm:"column:rr_planeado;type:text"`
	Emocion        string  `json:"emocion" gorm:"column:emocion"`
	Sesion         string  `json:"sesion" gorm:"column:sesion"`
}

// number is a numeric column. Null, empty or unparsable values read as 0.
type number struct {
	decimal.Decimal
}

func num(d decimal.Decimal) number { return number{Decimal: d} }

func (n *number) UnmarshalJSON(b []byte) error {
	var nd decimal.NullDecimal
	if err := nd.UnmarshalJSON(b); err != nil || !nd.Valid {
		n.Decimal = decimal.Zero
		return nil
	}
	n.Decimal = nd.Decimal
	return nil
}

func (n *number) Scan(src any) error {
	var nd decimal.NullDecimal
	if err := nd.Scan(src); err != nil || !nd.Valid {
		n.Decimal = decimal.Zero
		return nil
	}
	n.Decimal = nd.Decimal
	return nil
}

var (
	directionLabels = map[models.Direction]string{
		models.DirectionBuy:       "BUY",
		models.DirectionSell:      "SELL",
		models.DirectionBuyLimit:  "BUY LIMIT",
		models.DirectionSellLimit: "SELL LIMIT",
	}
	originLabels = map[models.Origin]string{
		models.OriginOwn:        "Propio",
		models.OriginSignal:     "Señal",
		models.OriginMentorship: "Mentoría",
		models.OriginBot:        "Bot",
	}
	originsByLabel = invert(originLabels)
)

func invert[K comparable](m map[K]string) map[string]K {
	out := make(map[string]K, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

func (v Vocabulary) toRow(t models.Trade) tradeRow {
	row := tradeRow{
		ID:             t.ID,
		UserID:         t.Owner,
		Fecha:          t.Date.Format(dateLayout),
		Hora:           clockString(t.EntryTime),
		HoraSalida:     clockString(t.ExitTime),
		Activo:         v.instrumentLabel(t.Instrument),
		Direccion:      directionLabels[t.Direction],
		Estrategia:     t.Strategy,
		Origen:         originLabels[t.Origin],
		PrecioEntrada:  num(t.EntryPrice),
		PrecioSalida:   num(t.ExitPrice),
		StopLoss:       num(t.StopLoss),
		TakeProfit:     num(t.TakeProfit),
		Lotaje:         num(t.LotSize),
		Comision:       num(t.Commission),
		Swap:           num(t.Swap),
		ResultadoBruto: num(t.GrossResult),
		ResultadoNeto:  num(t.NetResult),
		RRPlaneado:     num(t.PlannedRR),
		Emocion:        t.Emotion,
		Sesion:         t.Session,
	}
	if row.Direccion == "" {
		row.Direccion = string(t.Direction)
	}
	if row.Origen == "" {
		row.Origen = string(t.Origin)
	}
	return row
}

// fromRow translates a stored row. Only an unreadable date is an error; other
// columns degrade to zero values.
func (v Vocabulary) fromRow(row tradeRow) (models.Trade, error) {
	date, err := parseDate(row.Fecha)
	if err != nil {
		return models.Trade{}, err
	}

	t := models.Trade{
		ID:          row.ID,
		Owner:       row.UserID,
		Date:        date,
		EntryTime:   parseClock(row.Hora),
		ExitTime:    parseClock(row.HoraSalida),
		Instrument:  v.instrumentID(row.Activo),
		Direction:   directionFromLabel(row.Direccion),
		Strategy:    lookup(v.strategies, row.Estrategia),
		Origin:      originFromLabel(row.Origen),
		EntryPrice:  row.PrecioEntrada.Decimal,
		ExitPrice:   row.PrecioSalida.Decimal,
		StopLoss:    row.StopLoss.Decimal,
		TakeProfit:  row.TakeProfit.Decimal,
		LotSize:     row.Lotaje.Decimal,
		Commission:  row.Comision.Decimal,
		Swap:        row.Swap.Decimal,
		GrossResult: row.ResultadoBruto.Decimal,
		NetResult:   row.ResultadoNeto.Decimal,
		PlannedRR:   row.RRPlaneado.Decimal,
		Emotion:     lookup(v.emotions, row.Emocion),
		Session:     lookup(v.sessions, row.Sesion),
	}
	return t, nil
}

// parseDate accepts a plain date or a timestamp and keeps the calendar day.
func parseDate(s string) (time.Time, error) {
	if d, err := time.Parse(dateLayout, s); err == nil {
		return d, nil
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("invalid fecha %q", s)
}

func clockString(c *models.Clock) *string {
	if c == nil {
		return nil
	}
	s := c.String()
	return &s
}

func parseClock(s *string) *models.Clock {
	if s == nil || *s == "" {
		return nil
	}
	c, err := models.ParseClock(*s)
	if err != nil {
		return nil
	}
	return &c
}

func directionFromLabel(label string) models.Direction {
	if d, err := models.ParseDirection(label); err == nil {
		return d
	}
	return models.Direction(label)
}

func originFromLabel(label string) models.Origin {
	if o, ok := originsByLabel[label]; ok {
		return o
	}
	if o, err := models.ParseOrigin(label); err == nil {
		return o
	}
	return models.Origin(label)
}
