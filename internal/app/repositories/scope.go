package repositories

import (
	"fmt"
	"strings"

	"github.com/tharindu/vtcms/internal/app/access"
)

// scopeColumns names the columns an access scope maps onto for a given
// table. Empty fields mean the table has no such column and that part of
// the scope is ignored.
type scopeColumns struct {
	district   string
	instructor string
	recordedBy string
	centerID   string
}

// scopeConditions translates an access scope into SQL conditions and their
// positional arguments, numbered from $1. Callers append their own filters
// after these. Scope.None is handled by callers before any query runs.
func scopeConditions(scope access.Scope, cols scopeColumns) ([]string, []interface{}) {
	var conditions []string
	var args []interface{}

	add := func(column string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if scope.All {
		return conditions, args
	}
	if scope.District != "" && cols.district != "" {
		add(cols.district, scope.District)
	}
	if scope.Instructor != 0 && cols.instructor != "" {
		add(cols.instructor, scope.Instructor)
	}
	if scope.RecordedBy != 0 && cols.recordedBy != "" {
		add(cols.recordedBy, scope.RecordedBy)
	}
	if scope.CenterID != 0 && cols.centerID != "" {
		add(cols.centerID, scope.CenterID)
	}

	return conditions, args
}

func buildWhere(conditions []string) string {
	if len(conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conditions, " AND ")
}
