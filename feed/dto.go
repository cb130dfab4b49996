package feed

import (
	"fmt"
	"strings"
	"time"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"

	"stockwatch/model"
)

// seriesFields : columns requested from the integrated-data endpoint
var seriesFields = []string{
	"date", "open", "close", "high", "low", "volume", "amount", "turn",
	"peTTM", "pbMRQ", "psTTM", "pcfNcfTTM", "preclose",
	"cci", "kdj_k", "kdj_d", "kdj_j",
}

type seriesResponse struct {
	Name      string      `json:"name"`
	StockName string      `json:"stockName"`
	Data      []recordDTO `json:"data"`
}

// recordDTO : one supplier row; numbers may arrive quoted or bare
type recordDTO struct {
	Date      string              `json:"date"`
	Open      decimal.NullDecimal `json:"open"`
	High      decimal.NullDecimal `json:"high"`
	Low       decimal.NullDecimal `json:"low"`
	Close     decimal.NullDecimal `json:"close"`
	PreClose  decimal.NullDecimal `json:"preclose"`
	Volume    decimal.NullDecimal `json:"volume"`
	Amount    decimal.NullDecimal `json:"amount"`
	Turn      decimal.NullDecimal `json:"turn"`
	PeTTM     decimal.NullDecimal `json:"peTTM"`
	PbMRQ     decimal.NullDecimal `json:"pbMRQ"`
	PsTTM     decimal.NullDecimal `json:"psTTM"`
	PcfNcfTTM decimal.NullDecimal `json:"pcfNcfTTM"`
	CCI       decimal.NullDecimal `json:"cci"`
	KdjK      decimal.NullDecimal `json:"kdj_k"`
	KdjD      decimal.NullDecimal `json:"kdj_d"`
	KdjJ      decimal.NullDecimal `json:"kdj_j"`
}

// toBar : absent ratios read as zero, absent indicators stay null
func (r recordDTO) toBar() (model.Bar, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return model.Bar{}, err
	}
	return model.Derive(model.Bar{
		Date:      date,
		Open:      number(r.Open),
		High:      number(r.High),
		Low:       number(r.Low),
		Close:     number(r.Close),
		PreClose:  number(r.PreClose),
		Volume:    r.Volume.Decimal.IntPart(),
		Amount:    number(r.Amount),
		Turn:      number(r.Turn),
		PeTTM:     number(r.PeTTM),
		PbMRQ:     number(r.PbMRQ),
		PsTTM:     number(r.PsTTM),
		PcfNcfTTM: number(r.PcfNcfTTM),
		CCI:       nullable(r.CCI),
		KdjK:      nullable(r.KdjK),
		KdjD:      nullable(r.KdjD),
		KdjJ:      nullable(r.KdjJ),
	}), nil
}

func number(d decimal.NullDecimal) float64 {
	if !d.Valid {
		return 0
	}
	return d.Decimal.InexactFloat64()
}

func nullable(d decimal.NullDecimal) null.Float {
	if !d.Valid {
		return null.Float{}
	}
	return null.FloatFrom(d.Decimal.InexactFloat64())
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(model.DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", ErrDecode, s)
	}
	return model.TruncateDate(t), nil
}

func (r seriesResponse) toQuote(code string) (Quote, error) {
	bars := make([]model.Bar, 0, len(r.Data))
	for _, record := range r.Data {
		bar, err := record.toBar()
		if err != nil {
			return Quote{}, err
		}
		bars = append(bars, bar)
	}
	name := r.Name
	if name == "" {
		name = r.StockName
	}
	return Quote{Code: code, Name: name, Bars: model.Sorted(bars)}, nil
}

type instrumentDTO struct {
	Code     string `json:"code"`
	CodeName string `json:"code_name"`
	Name     string `json:"name"`
	Industry string `json:"industry"`
	Area     string `json:"area"`
}

type companyDTO struct {
	ComName      string `json:"com_name"`
	MainBusiness string `json:"main_business"`
	Introduction string `json:"introduction"`
}

// detailDTO : either {stock_info, company_info} or the flat stock_info fields
type detailDTO struct {
	instrumentDTO
	StockInfo   *instrumentDTO `json:"stock_info"`
	CompanyInfo *companyDTO    `json:"company_info"`
}

type detailResponse struct {
	Data *detailDTO `json:"data"`
}

func (d detailDTO) toInstrument(code string) model.Instrument {
	info := d.instrumentDTO
	if d.StockInfo != nil {
		info = *d.StockInfo
	}
	out := model.Instrument{
		Code:     code,
		Name:     firstNonEmpty(info.CodeName, info.Name),
		Industry: info.Industry,
		Area:     info.Area,
	}
	if c := d.CompanyInfo; c != nil {
		out.Name = firstNonEmpty(out.Name, c.ComName)
		out.Description = firstNonEmpty(c.Introduction, c.MainBusiness)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
