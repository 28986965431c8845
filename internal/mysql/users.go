package mysql

import (
	"fmt"
	"strings"
)

// UserPermissions selects the write privileges granted on top of read access
type UserPermissions struct {
	WriteAlter   bool // ALTER, CREATE, DROP, INDEX, REFERENCES
	WriteView    bool // CREATE VIEW
	WriteRoutine bool // ALTER ROUTINE, CREATE ROUTINE, EXECUTE
}

// UserSetup describes a database account for running mysqlschema
type UserSetup struct {
	Username    string
	Password    string
	Database    string
	Host        string // defaults to %
	Permissions UserPermissions
}

// sanitizeIdentifier drops characters that could end a quoted literal or identifier
var sanitizeIdentifier = strings.NewReplacer("'", "", "\"", "", "`", "", "\\", "", ";", "")

// UserSetupScript returns the SQL that creates the account and grants it read access,
// plus the selected write privileges, on one database. Inputs are stripped of quote
// characters so the script can be pasted into a client safely.
func UserSetupScript(setup UserSetup) string {
	user := sanitizeIdentifier.Replace(setup.Username)
	password := sanitizeIdentifier.Replace(setup.Password)
	database := sanitizeIdentifier.Replace(setup.Database)
	host := sanitizeIdentifier.Replace(setup.Host)
	if host == "" {
		host = "%"
	}

	account := fmt.Sprintf("'%s'@'%s'", user, host)
	scope := fmt.Sprintf("`%s`.*", database)

	var script strings.Builder
	fmt.Fprintf(&script, "-- mysqlschema user for database %s\n", database)
	fmt.Fprintf(&script, "CREATE USER IF NOT EXISTS %s IDENTIFIED BY '%s';\n", account, password)
	fmt.Fprintf(&script, "GRANT SELECT, SHOW VIEW ON %s TO %s;\n", scope, account)
	if setup.Permissions.WriteAlter {
		fmt.Fprintf(&script, "GRANT ALTER, CREATE, DROP, INDEX, REFERENCES ON %s TO %s;\n", scope, account)
	}
	if setup.Permissions.WriteView {
		fmt.Fprintf(&script, "GRANT CREATE VIEW ON %s TO %s;\n", scope, account)
	}
	if setup.Permissions.WriteRoutine {
		fmt.Fprintf(&script, "GRANT ALTER ROUTINE, CREATE ROUTINE, EXECUTE ON %s TO %s;\n", scope, account)
	}
	script.WriteString("FLUSH PRIVILEGES;\n")
	return script.String()
}
