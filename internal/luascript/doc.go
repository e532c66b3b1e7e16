// Package luascript turns Lua scripts into handler modules for the registry.
//
// A script is evaluated once and must return a table with up to four
// sections, each mapping a handler name to a function:
//
//	return {
//	  getters = {
//	    Double = function(state, getters, root_state, root_getters)
//	      return state.n * 2
//	    end,
//	  },
//	  mutations = {
//	    Inc = function(state, payload) state.n = state.n + (payload or 1) end,
//	  },
//	  actions = {
//	    IncTwice = function(ctx, payload)
//	      ctx.commit("Inc", payload)
//	      ctx.commit("Inc", payload)
//	      return ctx.state.n
//	    end,
//	  },
//	  factories = {
//	    Counter = function() return { n = 0 } end,
//	  },
//	}
//
// Mutations receive a copy of the state as a table; whatever the table holds
// when the function returns is written back into the Go map in place. The
// state handed to an action is read-only in effect: changes must go through
// ctx.commit.
//
// Only the base, table, string and math libraries are opened. Handlers run on
// a pool of interpreter states compiled from the same source, so a Lua action
// may commit into a Lua mutation of the same script.
package luascript
