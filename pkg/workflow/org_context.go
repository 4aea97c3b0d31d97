package workflow

// OrgUnset is the sentinel an upstream source reports before the organization
// id has resolved. An OrgContext carrying it is invalid and suppresses all
// assistant traffic.
const OrgUnset = "unset"

// OrgContext is the resolved organization identifier. Owned by the hosting
// application; read-only here.
type OrgContext struct {
	Id string
}

func (o OrgContext) Valid() bool {
	return o.Id != "" && o.Id != OrgUnset
}

// ResolveOrg picks the first usable id from several upstream sources
// (route param, auth claims, cached selection). Returns an invalid context
// when none has resolved yet.
func ResolveOrg(sources ...string) OrgContext {
	for _, s := range sources {
		ctx := OrgContext{Id: s}
		if ctx.Valid() {
			return ctx
		}
	}
	return OrgContext{Id: OrgUnset}
}
