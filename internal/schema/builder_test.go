package schema_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	language "github.com/hanpama/graphbind/internal/language"
	schema "github.com/hanpama/graphbind/internal/schema"
)

const testSDL = `
type Query {
  user(id: ID!): User
  search(term: String!, limit: Int = 10): [SearchResult!]!
}

type User implements Node {
  id: ID!
  name: String!
  role: Role
}

type Team implements Node {
  id: ID!
}

interface Node {
  id: ID!
}

union SearchResult = User | Team

enum Role {
  ADMIN
  MEMBER
}

input Filter {
  term: String!
  limit: Int = 25
  exact: Boolean
}
`

func buildTestSchema(t *testing.T) *schema.Schema {
	t.Helper()
	astSchema, err := language.LoadSchema("test", testSDL)
	require.NoError(t, err)
	return schema.Build(astSchema)
}

func TestBuild_RootTypes(t *testing.T) {
	sch := buildTestSchema(t)
	require.Equal(t, "Query", sch.QueryType)
	require.Empty(t, sch.MutationType)
	require.NotNil(t, sch.GetQueryType())
	require.Nil(t, sch.GetMutationType())
}

func TestBuild_ObjectFieldsAndArguments(t *testing.T) {
	sch := buildTestSchema(t)
	query := sch.Types["Query"]
	require.NotNil(t, query)
	require.Equal(t, schema.TypeKindObject, query.Kind)

	user := query.Field("user")
	require.NotNil(t, user)
	idArg := user.Argument("id")
	require.NotNil(t, idArg)
	require.True(t, schema.IsNonNull(idArg.Type))
	require.Equal(t, "ID", schema.GetNamedType(idArg.Type))

	search := query.Field("search")
	require.NotNil(t, search)
	require.Equal(t, 10, search.Argument("limit").DefaultValue)
	require.True(t, schema.IsNonNull(search.Type))
	require.True(t, schema.IsList(search.Type))
	require.Equal(t, "SearchResult", schema.GetNamedType(search.Type))
}

func TestBuild_InterfaceAndPossibleTypes(t *testing.T) {
	sch := buildTestSchema(t)

	node := sch.Types["Node"]
	require.Equal(t, schema.TypeKindInterface, node.Kind)
	require.ElementsMatch(t, []string{"User", "Team"}, node.PossibleTypes)

	user := sch.Types["User"]
	require.Equal(t, []string{"Node"}, user.Interfaces)

	result := sch.Types["SearchResult"]
	require.Equal(t, schema.TypeKindUnion, result.Kind)
	require.ElementsMatch(t, []string{"User", "Team"}, result.PossibleTypes)
}

func TestBuild_Enum(t *testing.T) {
	sch := buildTestSchema(t)
	role := sch.Types["Role"]
	require.Equal(t, schema.TypeKindEnum, role.Kind)
	require.Equal(t, []string{"ADMIN", "MEMBER"}, role.EnumValues)
	require.True(t, role.HasEnumValue("ADMIN"))
	require.False(t, role.HasEnumValue("GUEST"))
}

func TestBuild_InputObject(t *testing.T) {
	sch := buildTestSchema(t)
	filter := sch.Types["Filter"]
	require.Equal(t, schema.TypeKindInputObject, filter.Kind)
	require.Len(t, filter.InputFields, 3)

	byName := map[string]*schema.InputValue{}
	for _, f := range filter.InputFields {
		byName[f.Name] = f
	}
	require.True(t, schema.IsNonNull(byName["term"].Type))
	require.Equal(t, 25, byName["limit"].DefaultValue)
	require.Nil(t, byName["exact"].DefaultValue)
}

func TestBuild_BuiltinScalars(t *testing.T) {
	sch := buildTestSchema(t)
	for _, name := range []string{"String", "Int", "Boolean", "ID"} {
		typ := sch.Types[name]
		require.NotNil(t, typ, "builtin scalar %s", name)
		require.Equal(t, schema.TypeKindScalar, typ.Kind)
	}
}

func TestTypeRef_String(t *testing.T) {
	tr := schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("Int"))))
	require.Equal(t, "[Int!]!", tr.String())
	require.Equal(t, "Int", schema.GetNamedType(tr))
	require.True(t, schema.IsList(tr))
}
