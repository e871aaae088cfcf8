package models

import (
	"strings"
	"unicode"
)

// Privilege is resolved from role and department when an employee is loaded.
type Privilege string

const (
	PrivilegeAssociate  Privilege = "associate"
	PrivilegeManagement Privilege = "management" // manager-tier points, no superuser rights
	PrivilegeSuperuser  Privilege = "superuser"
)

var (
	superuserRoles       = []string{"Manager", "Director"}
	managementDepartment = []string{"Board", "Management"}
)

// ClassifyPrivilege maps free-text role and department to a Privilege.
// Matching is by whole word, so "Sales Manager" and "Sales-Manager" are
// superusers. A word negated with "Non" ("Non-Manager") does not count.
func ClassifyPrivilege(role, department string) Privilege {
	if hasWord(role, superuserRoles) {
		return PrivilegeSuperuser
	}
	if hasWord(department, managementDepartment) {
		return PrivilegeManagement
	}
	return PrivilegeAssociate
}

func hasWord(text string, words []string) bool {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for i, f := range fields {
		if i > 0 && strings.EqualFold(fields[i-1], "non") {
			continue
		}
		for _, w := range words {
			if f == w {
				return true
			}
		}
	}
	return false
}
