package criteria

import (
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/service/dao"
)

// Match evaluates list parameters against a record's indexable fields.  Every
// parameter whose name appears in fields must match; unknown parameter names
// are ignored so that stores stay forward compatible.
func Match(fields map[string]string, parameters []*dao.Parameter) bool {
	if len(parameters) == 0 {
		return true
	}
	for _, parameter := range parameters {
		actual, ok := fields[parameter.Name]
		if !ok {
			continue
		}
		switch expect := parameter.Value.(type) {
		case string:
			if actual != expect {
				return false
			}
		case []string:
			matched := false
			for _, candidate := range expect {
				if actual == candidate {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		}
	}
	return true
}
