package model

import "gorm.io/datatypes"

func setString(cols map[string]interface{}, column string, v *string) {
	if v != nil {
		cols[column] = *v
	}
}

func setBool(cols map[string]interface{}, column string, v *bool) {
	if v != nil {
		cols[column] = *v
	}
}

func setList(cols map[string]interface{}, column string, v *[]string) {
	if v != nil {
		list := *v
		if list == nil {
			list = []string{}
		}
		cols[column] = datatypes.JSONSlice[string](list)
	}
}

// optionalString maps an empty string to nil for nullable text columns
func optionalString(v *string) interface{} {
	if v == nil || *v == "" {
		return nil
	}
	return *v
}
