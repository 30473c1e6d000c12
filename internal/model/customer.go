package model

// IdentityType enumerates the identity documents a guest may present at
// registration.  The Customers table carries a CHECK constraint with the
// same set of values.
type IdentityType string

const (
    IdentityAdhar IdentityType = "Adhar"
    IdentityPAN   IdentityType = "PAN"
    IdentityDL    IdentityType = "DL"
)

// IdentityTypes lists the accepted identity documents in display order.
var IdentityTypes = []IdentityType{IdentityAdhar, IdentityPAN, IdentityDL}

// Valid reports whether t is one of the accepted identity documents.
func (t IdentityType) Valid() bool {
    for _, v := range IdentityTypes {
        if v == t {
            return true
        }
    }
    return false
}

// Customer represents a guest record as stored in the `Customers`
// table.  Customers are created at registration and updated in place;
// they are never deleted by the hotel workflows.
//
// Fields:
//  CustomerID     – primary key, generated on insert.
//  FirstName      – given name.
//  LastName       – family name.
//  DOB            – date of birth.
//  IdentityType   – document kind (Adhar, PAN or DL).
//  IdentityString – the document number as printed.
type Customer struct {
    CustomerID     int64        `json:"CustomerID"`     // Customers.CustomerID
    FirstName      string       `json:"FirstName"`      // Customers.FirstName
    LastName       string       `json:"LastName"`       // Customers.LastName
    DOB            Date         `json:"DOB"`            // Customers.DOB
    IdentityType   IdentityType `json:"IdentityType"`   // Customers.IdentityType
    IdentityString string       `json:"IdentityString"` // Customers.IdentityString
}

// CustomerPatch carries the optional new values of a partial customer
// update.  Nil fields are left untouched.
type CustomerPatch struct {
    FirstName      *string
    LastName       *string
    DOB            *Date
    IdentityType   *IdentityType
    IdentityString *string
}

// Empty reports whether no field is set.
func (p CustomerPatch) Empty() bool {
    return p.FirstName == nil && p.LastName == nil && p.DOB == nil &&
        p.IdentityType == nil && p.IdentityString == nil
}
