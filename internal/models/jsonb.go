package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// jsonb column helpers. GORM stores these as jsonb text; scanning tolerates
// NULL and empty columns.

func jsonbValue(v interface{}) (driver.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func jsonbScan(dest interface{}, src interface{}) error {
	if src == nil {
		return nil
	}
	var data []byte
	switch s := src.(type) {
	case []byte:
		data = s
	case string:
		data = []byte(s)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", src)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dest)
}

// StringList jsonb-backed string slice
type StringList []string

func (l StringList) Value() (driver.Value, error) { return jsonbValue([]string(l)) }
func (l *StringList) Scan(src interface{}) error  { return jsonbScan(l, src) }

// Contains reports whether s is present in the list
func (l StringList) Contains(s string) bool {
	for _, v := range l {
		if v == s {
			return true
		}
	}
	return false
}

// PhotoList jsonb-backed photo evidence slice
type PhotoList []PhotoEvidence

func (l PhotoList) Value() (driver.Value, error) { return jsonbValue([]PhotoEvidence(l)) }
func (l *PhotoList) Scan(src interface{}) error  { return jsonbScan(l, src) }

// GPSPointList jsonb-backed coordinate slice
type GPSPointList []GPSPoint

func (l GPSPointList) Value() (driver.Value, error) { return jsonbValue([]GPSPoint(l)) }
func (l *GPSPointList) Scan(src interface{}) error  { return jsonbScan(l, src) }

// TimeIntervalList jsonb-backed interval slice
type TimeIntervalList []TimeInterval

func (l TimeIntervalList) Value() (driver.Value, error) { return jsonbValue([]TimeInterval(l)) }
func (l *TimeIntervalList) Scan(src interface{}) error  { return jsonbScan(l, src) }

func (m TransactionMetadata) Value() (driver.Value, error) { return jsonbValue(m) }
func (m *TransactionMetadata) Scan(src interface{}) error  { return jsonbScan(m, src) }
